package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/saldopos/saldo/internal/domain"
	"github.com/saldopos/saldo/internal/usecase"
)

// FakeLedger is an in-memory LedgerSource over plain entry slices. It
// applies the same bounds semantics as the SQL implementation, which makes
// it suitable for verifying aggregation properties without a database.
type FakeLedger struct {
	mu        sync.RWMutex
	accounts  map[int64]bool
	purchases []domain.PurchaseEntry
	transfers []domain.TransferEntry

	SumEntriesFunc     func(ctx context.Context, accountIDs []int64, b usecase.Bounds) ([]usecase.AccountSum, error)
	HighWaterMarksFunc func(ctx context.Context) (usecase.HighWaterMarks, error)

	SumEntriesCalls int
}

// NewFakeLedger creates an empty FakeLedger.
func NewFakeLedger() *FakeLedger {
	return &FakeLedger{accounts: make(map[int64]bool)}
}

// AddAccount registers an account id.
func (f *FakeLedger) AddAccount(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[id] = true
}

// AddPurchase appends a purchase entry.
func (f *FakeLedger) AddPurchase(e domain.PurchaseEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.purchases = append(f.purchases, e)
}

// AddTransfer appends a transfer entry.
func (f *FakeLedger) AddTransfer(e domain.TransferEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers = append(f.transfers, e)
}

func inSet(set map[int64]bool, id int64) bool {
	return set == nil || set[id]
}

func toSet(ids []int64) map[int64]bool {
	if ids == nil {
		return nil
	}

	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}

	return set
}

func purchaseInBounds(e domain.PurchaseEntry, b usecase.Bounds) bool {
	if b.AfterPurchaseID != nil && e.PurchaseID <= *b.AfterPurchaseID {
		return false
	}

	if b.UptoPurchaseID != nil && e.PurchaseID > *b.UptoPurchaseID {
		return false
	}

	if b.UptoDate != nil && e.OccurredAt.After(*b.UptoDate) {
		return false
	}

	return true
}

func transferInBounds(e domain.TransferEntry, b usecase.Bounds) bool {
	if b.AfterTransferID != nil && e.TransferID <= *b.AfterTransferID {
		return false
	}

	if b.UptoTransferID != nil && e.TransferID > *b.UptoTransferID {
		return false
	}

	if b.UptoDate != nil && e.OccurredAt.After(*b.UptoDate) {
		return false
	}

	return true
}

func (f *FakeLedger) PurchaseEntries(ctx context.Context, accountIDs []int64, b usecase.Bounds, limit, offset int) ([]domain.PurchaseEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	set := toSet(accountIDs)

	var out []domain.PurchaseEntry
	for _, e := range f.purchases {
		if !purchaseInBounds(e, b) {
			continue
		}

		if !inSet(set, e.PayerID) && !inSet(set, e.PayeeID) {
			continue
		}

		out = append(out, e)
	}

	return paginate(out, limit, offset), nil
}

func (f *FakeLedger) TransferEntries(ctx context.Context, accountIDs []int64, b usecase.Bounds, limit, offset int) ([]domain.TransferEntry, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	set := toSet(accountIDs)

	var out []domain.TransferEntry
	for _, e := range f.transfers {
		if !transferInBounds(e, b) {
			continue
		}

		fromIn := e.FromID != nil && inSet(set, *e.FromID)
		toIn := e.ToID != nil && inSet(set, *e.ToID)

		if !fromIn && !toIn {
			continue
		}

		out = append(out, e)
	}

	return paginate(out, limit, offset), nil
}

func paginate[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return nil
	}

	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}

	return in
}

func (f *FakeLedger) SumEntries(ctx context.Context, accountIDs []int64, b usecase.Bounds) ([]usecase.AccountSum, error) {
	f.mu.Lock()
	f.SumEntriesCalls++
	f.mu.Unlock()

	if f.SumEntriesFunc != nil {
		return f.SumEntriesFunc(ctx, accountIDs, b)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	type unit struct {
		currency  string
		precision int32
	}
	type group struct {
		account int64
		unit    unit
	}

	sums := make(map[group]int64)
	contribute := func(account int64, m domain.Money, set map[int64]bool) {
		if !inSet(set, account) {
			return
		}

		sums[group{account: account, unit: unit{m.Currency, m.Precision}}] += m.Amount
	}

	set := toSet(accountIDs)

	for _, e := range f.purchases {
		if !purchaseInBounds(e, b) {
			continue
		}

		contribute(e.PayerID, e.Amount.Neg(), set)
		contribute(e.PayeeID, e.Amount, set)
	}

	for _, e := range f.transfers {
		if !transferInBounds(e, b) {
			continue
		}

		if e.FromID != nil {
			contribute(*e.FromID, e.Amount.Neg(), set)
		}

		if e.ToID != nil {
			contribute(*e.ToID, e.Amount, set)
		}
	}

	out := make([]usecase.AccountSum, 0, len(sums))
	for g, amount := range sums {
		out = append(out, usecase.AccountSum{
			AccountID: g.account,
			Amount:    domain.NewMoney(amount, g.unit.currency, g.unit.precision),
		})
	}

	return out, nil
}

func (f *FakeLedger) HighWaterMarks(ctx context.Context) (usecase.HighWaterMarks, error) {
	if f.HighWaterMarksFunc != nil {
		return f.HighWaterMarksFunc(ctx)
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var hwm usecase.HighWaterMarks

	for i := range f.purchases {
		e := f.purchases[i]
		if hwm.Purchase.ID == nil || e.PurchaseID > *hwm.Purchase.ID {
			id, at := e.PurchaseID, e.OccurredAt
			hwm.Purchase = domain.LedgerAnchor{ID: &id, At: &at}
		}
	}

	for i := range f.transfers {
		e := f.transfers[i]
		if hwm.Transfer.ID == nil || e.TransferID > *hwm.Transfer.ID {
			id, at := e.TransferID, e.OccurredAt
			hwm.Transfer = domain.LedgerAnchor{ID: &id, At: &at}
		}
	}

	return hwm, nil
}

func (f *FakeLedger) AccountIDs(ctx context.Context) ([]int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ids := make([]int64, 0, len(f.accounts))
	for id := range f.accounts {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (f *FakeLedger) AccountIDsWithEntries(ctx context.Context) ([]int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	set := make(map[int64]bool)
	for _, e := range f.purchases {
		set[e.PayerID] = true
		set[e.PayeeID] = true
	}

	for _, e := range f.transfers {
		if e.FromID != nil {
			set[*e.FromID] = true
		}

		if e.ToID != nil {
			set[*e.ToID] = true
		}
	}

	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

func (f *FakeLedger) MissingAccounts(ctx context.Context, accountIDs []int64) ([]int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var missing []int64
	for _, id := range accountIDs {
		if !f.accounts[id] {
			missing = append(missing, id)
		}
	}

	return missing, nil
}

func (f *FakeLedger) ConsistencyTotals(ctx context.Context) (domain.Money, domain.Money, error) {
	sums, err := f.SumEntries(ctx, nil, usecase.Bounds{})
	if err != nil {
		return domain.Money{}, domain.Money{}, err
	}

	var total domain.Money
	for _, s := range sums {
		total, err = total.Add(s.Amount)
		if err != nil {
			return domain.Money{}, domain.Money{}, err
		}
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var external domain.Money
	for _, e := range f.transfers {
		if e.FromID == nil {
			external, err = external.Add(e.Amount)
		} else if e.ToID == nil {
			external, err = external.Sub(e.Amount)
		}

		if err != nil {
			return domain.Money{}, domain.Money{}, err
		}
	}

	return total, external, nil
}

// FakeCacheStore is an in-memory BalanceCacheStore enforcing the same
// anchor monotonicity rule as the postgres implementation.
type FakeCacheStore struct {
	mu   sync.RWMutex
	rows map[int64]*domain.CachedBalance

	GetBatchFunc func(ctx context.Context, accountIDs []int64) (map[int64]*domain.CachedBalance, error)
	UpsertFunc   func(ctx context.Context, rows []*domain.CachedBalance) error

	UpsertCalls int
}

// NewFakeCacheStore creates an empty FakeCacheStore.
func NewFakeCacheStore() *FakeCacheStore {
	return &FakeCacheStore{rows: make(map[int64]*domain.CachedBalance)}
}

func (s *FakeCacheStore) Get(ctx context.Context, accountID int64) (*domain.CachedBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[accountID]
	if !ok {
		return nil, nil
	}

	cp := *row

	return &cp, nil
}

func (s *FakeCacheStore) GetBatch(ctx context.Context, accountIDs []int64) (map[int64]*domain.CachedBalance, error) {
	if s.GetBatchFunc != nil {
		return s.GetBatchFunc(ctx, accountIDs)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	set := toSet(accountIDs)

	out := make(map[int64]*domain.CachedBalance)
	for id, row := range s.rows {
		if !inSet(set, id) {
			continue
		}

		cp := *row
		out[id] = &cp
	}

	return out, nil
}

func (s *FakeCacheStore) Upsert(ctx context.Context, rows []*domain.CachedBalance) error {
	s.mu.Lock()
	s.UpsertCalls++
	s.mu.Unlock()

	if s.UpsertFunc != nil {
		return s.UpsertFunc(ctx, rows)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range rows {
		if existing, ok := s.rows[row.AccountID]; ok && !existing.SupersededBy(row) {
			return domain.ErrAnchorRegression
		}

		cp := *row
		s.rows[row.AccountID] = &cp
	}

	return nil
}

func (s *FakeCacheStore) Invalidate(ctx context.Context, accountIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if accountIDs == nil {
		s.rows = make(map[int64]*domain.CachedBalance)
		return nil
	}

	for _, id := range accountIDs {
		delete(s.rows, id)
	}

	return nil
}

// Rows returns a snapshot of the stored rows.
func (s *FakeCacheStore) Rows() map[int64]domain.CachedBalance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]domain.CachedBalance, len(s.rows))
	for id, row := range s.rows {
		out[id] = *row
	}

	return out
}

// PassthroughRetrier runs the operation once, without retries.
type PassthroughRetrier struct {
	Calls int
}

func (r *PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	r.Calls++
	return operation()
}

// SequenceRunIDs generates deterministic run ids for tests.
type SequenceRunIDs struct {
	mu sync.Mutex
	n  int
}

func (g *SequenceRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++

	return "run-" + time.Now().UTC().Format("20060102") + "-" + itoa(g.n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[i:])
}

// CountingInstrumentation records engine measurements for assertions.
type CountingInstrumentation struct {
	mu        sync.Mutex
	CacheHits int
	Misses    int
	Rebuilds  int
}

func (c *CountingInstrumentation) BalanceLookup(cacheHit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cacheHit {
		c.CacheHits++
	} else {
		c.Misses++
	}
}

func (c *CountingInstrumentation) RebuildCompleted(accounts int, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Rebuilds++
}

// FakeRebuildLock is an in-memory single-process lock.
type FakeRebuildLock struct {
	mu       sync.Mutex
	holder   string
	Acquires int
	Releases int
}

func (l *FakeRebuildLock) Acquire(ctx context.Context, runID string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Acquires++

	if l.holder != "" {
		return false, nil
	}

	l.holder = runID

	return true, nil
}

func (l *FakeRebuildLock) Release(ctx context.Context, runID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Releases++

	if l.holder == runID {
		l.holder = ""
	}

	return nil
}

// Held reports whether any run currently holds the lock.
func (l *FakeRebuildLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.holder != ""
}
