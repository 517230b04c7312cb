package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saldopos/saldo/internal/domain"
	"github.com/saldopos/saldo/internal/usecase"
)

// LedgerRepository implements usecase.LedgerSource over the producer's
// purchase and transfer tables. It only ever reads. All queries are
// constant SQL with named bind parameters; bounds are composed as
// conditions, never concatenated values.
type LedgerRepository struct {
	pool *pgxpool.Pool
	txm  *TxManager
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool, txm *TxManager) *LedgerRepository {
	return &LedgerRepository{pool: pool, txm: txm}
}

// entryFilter accumulates static condition fragments plus their named
// arguments. Fragments are compile-time constants; only values travel
// through the bind parameters.
type entryFilter struct {
	conds []string
	args  pgx.NamedArgs
}

func newEntryFilter() *entryFilter {
	return &entryFilter{args: pgx.NamedArgs{}}
}

func (f *entryFilter) add(cond, name string, value any) *entryFilter {
	f.conds = append(f.conds, cond)
	f.args[name] = value

	return f
}

// clause renders the accumulated conditions as a conjunction, or TRUE when
// nothing was bounded.
func (f *entryFilter) clause() string {
	if len(f.conds) == 0 {
		return "TRUE"
	}

	return strings.Join(f.conds, " AND ")
}

func purchaseFilter(b usecase.Bounds) *entryFilter {
	f := newEntryFilter()

	if b.AfterPurchaseID != nil {
		f.add("p.id > @after_purchase_id", "after_purchase_id", *b.AfterPurchaseID)
	}

	if b.UptoPurchaseID != nil {
		f.add("p.id <= @upto_purchase_id", "upto_purchase_id", *b.UptoPurchaseID)
	}

	if b.UptoDate != nil {
		f.add("p.created_at <= @upto_purchase_date", "upto_purchase_date", *b.UptoDate)
	}

	return f
}

func transferFilter(b usecase.Bounds) *entryFilter {
	f := newEntryFilter()

	if b.AfterTransferID != nil {
		f.add("t.id > @after_transfer_id", "after_transfer_id", *b.AfterTransferID)
	}

	if b.UptoTransferID != nil {
		f.add("t.id <= @upto_transfer_id", "upto_transfer_id", *b.UptoTransferID)
	}

	if b.UptoDate != nil {
		f.add("t.created_at <= @upto_transfer_date", "upto_transfer_date", *b.UptoDate)
	}

	return f
}

func mergeArgs(dst pgx.NamedArgs, srcs ...pgx.NamedArgs) pgx.NamedArgs {
	for _, src := range srcs {
		for k, v := range src {
			dst[k] = v
		}
	}

	return dst
}

const sumEntriesQuery = `
WITH purchase_lines AS (
    SELECT p.payer_id, p.payee_id,
           (r.quantity * pr.price_incl_vat)::bigint AS line_total,
           pr.currency, pr.precision
    FROM purchases p
    JOIN purchase_rows r ON r.purchase_id = p.id
    JOIN product_revisions pr
      ON pr.product_id = r.product_id AND pr.revision = r.product_revision
    WHERE %s
),
contributions AS (
    SELECT payer_id AS account_id, -line_total AS amount, currency, precision
    FROM purchase_lines
  UNION ALL
    SELECT payee_id, line_total, currency, precision
    FROM purchase_lines
  UNION ALL
    SELECT t.from_id, -t.amount, t.currency, t.precision
    FROM transfers t
    WHERE t.from_id IS NOT NULL AND %s
  UNION ALL
    SELECT t.to_id, t.amount, t.currency, t.precision
    FROM transfers t
    WHERE t.to_id IS NOT NULL AND %s
)
SELECT account_id, currency, precision, SUM(amount)::bigint AS total
FROM contributions
WHERE @account_ids::bigint[] IS NULL OR account_id = ANY(@account_ids)
GROUP BY account_id, currency, precision`

// SumEntries computes the signed per-account entry totals within bounds.
// The whole aggregation runs inside one repeatable-read snapshot, so a
// writer appending entries mid-scan cannot make the purchase and transfer
// legs disagree about which ledger state they saw.
func (r *LedgerRepository) SumEntries(ctx context.Context, accountIDs []int64, b usecase.Bounds) ([]usecase.AccountSum, error) {
	pf := purchaseFilter(b)
	tf := transferFilter(b)

	query := fmt.Sprintf(sumEntriesQuery, pf.clause(), tf.clause(), tf.clause())
	args := mergeArgs(pgx.NamedArgs{"account_ids": accountIDs}, pf.args, tf.args)

	tx, err := r.txm.BeginSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin snapshot: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("sum ledger entries: %w", err)
	}

	sums, err := scanAccountSums(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit snapshot: %w", err)
	}

	return sums, nil
}

func scanAccountSums(rows pgx.Rows) ([]usecase.AccountSum, error) {
	defer rows.Close()

	var sums []usecase.AccountSum

	for rows.Next() {
		var (
			accountID int64
			currency  string
			precision int32
			total     int64
		)

		if err := rows.Scan(&accountID, &currency, &precision, &total); err != nil {
			return nil, fmt.Errorf("scan account sum: %w", err)
		}

		sums = append(sums, usecase.AccountSum{
			AccountID: accountID,
			Amount:    domain.NewMoney(total, currency, precision),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read account sums: %w", err)
	}

	return sums, nil
}

const purchaseEntriesQuery = `
SELECT p.id, p.payer_id, p.payee_id, p.created_at,
       (r.quantity * pr.price_incl_vat)::bigint AS line_total,
       pr.currency, pr.precision
FROM purchases p
JOIN purchase_rows r ON r.purchase_id = p.id
JOIN product_revisions pr
  ON pr.product_id = r.product_id AND pr.revision = r.product_revision
WHERE (%s)
  AND (@account_ids::bigint[] IS NULL
       OR p.payer_id = ANY(@account_ids)
       OR p.payee_id = ANY(@account_ids))
LIMIT @limit OFFSET @offset`

// PurchaseEntries returns purchase entries (one per line item) within
// bounds. Ordering is deliberately unspecified.
func (r *LedgerRepository) PurchaseEntries(ctx context.Context, accountIDs []int64, b usecase.Bounds, limit, offset int) ([]domain.PurchaseEntry, error) {
	f := purchaseFilter(b)

	query := fmt.Sprintf(purchaseEntriesQuery, f.clause())
	args := mergeArgs(pgx.NamedArgs{
		"account_ids": accountIDs,
		"limit":       limit,
		"offset":      offset,
	}, f.args)

	rows, err := r.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list purchase entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.PurchaseEntry

	for rows.Next() {
		var (
			e         domain.PurchaseEntry
			total     int64
			currency  string
			precision int32
		)

		if err := rows.Scan(&e.PurchaseID, &e.PayerID, &e.PayeeID, &e.OccurredAt, &total, &currency, &precision); err != nil {
			return nil, fmt.Errorf("scan purchase entry: %w", err)
		}

		e.Amount = domain.NewMoney(total, currency, precision)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read purchase entries: %w", err)
	}

	return entries, nil
}

const transferEntriesQuery = `
SELECT t.id, t.from_id, t.to_id, t.amount, t.currency, t.precision, t.created_at, t.description
FROM transfers t
WHERE (%s)
  AND (@account_ids::bigint[] IS NULL
       OR t.from_id = ANY(@account_ids)
       OR t.to_id = ANY(@account_ids))
LIMIT @limit OFFSET @offset`

// TransferEntries returns transfer entries within bounds.
func (r *LedgerRepository) TransferEntries(ctx context.Context, accountIDs []int64, b usecase.Bounds, limit, offset int) ([]domain.TransferEntry, error) {
	f := transferFilter(b)

	query := fmt.Sprintf(transferEntriesQuery, f.clause())
	args := mergeArgs(pgx.NamedArgs{
		"account_ids": accountIDs,
		"limit":       limit,
		"offset":      offset,
	}, f.args)

	rows, err := r.pool.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list transfer entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.TransferEntry

	for rows.Next() {
		var (
			e         domain.TransferEntry
			from, to  pgtype.Int8
			amount    int64
			currency  string
			precision int32
			desc      pgtype.Text
		)

		if err := rows.Scan(&e.TransferID, &from, &to, &amount, &currency, &precision, &e.OccurredAt, &desc); err != nil {
			return nil, fmt.Errorf("scan transfer entry: %w", err)
		}

		e.FromID = int8ToPtr(from)
		e.ToID = int8ToPtr(to)
		e.Amount = domain.NewMoney(amount, currency, precision)
		e.Description = desc.String
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transfer entries: %w", err)
	}

	return entries, nil
}

const highWaterMarksQuery = `
SELECT
    (SELECT MAX(id) FROM purchases)                                  AS purchase_id,
    (SELECT created_at FROM purchases ORDER BY id DESC LIMIT 1)      AS purchase_at,
    (SELECT MAX(id) FROM transfers)                                  AS transfer_id,
    (SELECT created_at FROM transfers ORDER BY id DESC LIMIT 1)      AS transfer_at`

// HighWaterMarks reads the current maximum ledger ids and their timestamps
// in a single statement, so both marks come from one snapshot.
func (r *LedgerRepository) HighWaterMarks(ctx context.Context) (usecase.HighWaterMarks, error) {
	var (
		purchaseID, transferID pgtype.Int8
		purchaseAt, transferAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, highWaterMarksQuery).
		Scan(&purchaseID, &purchaseAt, &transferID, &transferAt)
	if err != nil {
		return usecase.HighWaterMarks{}, fmt.Errorf("read high-water marks: %w", err)
	}

	return usecase.HighWaterMarks{
		Purchase: toAnchor(purchaseID, purchaseAt),
		Transfer: toAnchor(transferID, transferAt),
	}, nil
}

const accountIDsQuery = `SELECT id FROM accounts ORDER BY id`

// AccountIDs lists every known account id.
func (r *LedgerRepository) AccountIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, accountIDsQuery)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return scanIDs(rows)
}

const accountIDsWithEntriesQuery = `
SELECT DISTINCT account_id FROM (
    SELECT payer_id AS account_id FROM purchases
  UNION
    SELECT payee_id FROM purchases
  UNION
    SELECT from_id FROM transfers WHERE from_id IS NOT NULL
  UNION
    SELECT to_id FROM transfers WHERE to_id IS NOT NULL
) ids
ORDER BY account_id`

// AccountIDsWithEntries lists accounts appearing in at least one entry.
func (r *LedgerRepository) AccountIDsWithEntries(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, accountIDsWithEntriesQuery)
	if err != nil {
		return nil, fmt.Errorf("list accounts with entries: %w", err)
	}

	return scanIDs(rows)
}

const missingAccountsQuery = `
SELECT u.id
FROM unnest(@account_ids::bigint[]) AS u(id)
LEFT JOIN accounts a ON a.id = u.id
WHERE a.id IS NULL`

// MissingAccounts returns which of the given ids have no account row.
func (r *LedgerRepository) MissingAccounts(ctx context.Context, accountIDs []int64) ([]int64, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, missingAccountsQuery, pgx.NamedArgs{"account_ids": accountIDs})
	if err != nil {
		return nil, fmt.Errorf("check accounts: %w", err)
	}

	return scanIDs(rows)
}

const consistencyTotalsQuery = `
WITH purchase_lines AS (
    SELECT p.payer_id, p.payee_id,
           (r.quantity * pr.price_incl_vat)::bigint AS line_total,
           pr.currency, pr.precision
    FROM purchases p
    JOIN purchase_rows r ON r.purchase_id = p.id
    JOIN product_revisions pr
      ON pr.product_id = r.product_id AND pr.revision = r.product_revision
),
contributions AS (
    SELECT -line_total AS amount, currency, precision FROM purchase_lines
  UNION ALL
    SELECT line_total, currency, precision FROM purchase_lines
  UNION ALL
    SELECT -t.amount, t.currency, t.precision FROM transfers t WHERE t.from_id IS NOT NULL
  UNION ALL
    SELECT t.amount, t.currency, t.precision FROM transfers t WHERE t.to_id IS NOT NULL
),
external AS (
    SELECT CASE WHEN t.from_id IS NULL THEN t.amount ELSE -t.amount END AS amount,
           t.currency, t.precision
    FROM transfers t
    WHERE t.from_id IS NULL OR t.to_id IS NULL
)
SELECT 'total' AS kind, currency, precision, SUM(amount)::bigint FROM contributions GROUP BY currency, precision
UNION ALL
SELECT 'external', currency, precision, SUM(amount)::bigint FROM external GROUP BY currency, precision`

// ConsistencyTotals returns the signed sum of every entry contribution and
// the net of external transfers. More than one currency in either side is
// itself an inconsistency and is reported as a currency mismatch.
func (r *LedgerRepository) ConsistencyTotals(ctx context.Context) (domain.Money, domain.Money, error) {
	rows, err := r.pool.Query(ctx, consistencyTotalsQuery)
	if err != nil {
		return domain.Money{}, domain.Money{}, fmt.Errorf("read consistency totals: %w", err)
	}
	defer rows.Close()

	var total, external domain.Money

	for rows.Next() {
		var (
			kind      string
			currency  string
			precision int32
			amount    int64
		)

		if err := rows.Scan(&kind, &currency, &precision, &amount); err != nil {
			return domain.Money{}, domain.Money{}, fmt.Errorf("scan consistency totals: %w", err)
		}

		m := domain.NewMoney(amount, currency, precision)

		switch kind {
		case "total":
			total, err = total.Add(m)
		case "external":
			external, err = external.Add(m)
		}

		if err != nil {
			return domain.Money{}, domain.Money{}, err
		}
	}

	if err := rows.Err(); err != nil {
		return domain.Money{}, domain.Money{}, fmt.Errorf("read consistency totals: %w", err)
	}

	return total, external, nil
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read account ids: %w", err)
	}

	return ids, nil
}

func int8ToPtr(v pgtype.Int8) *int64 {
	if !v.Valid {
		return nil
	}

	out := v.Int64

	return &out
}

func toAnchor(id pgtype.Int8, at pgtype.Timestamptz) domain.LedgerAnchor {
	if !id.Valid {
		return domain.LedgerAnchor{}
	}

	v := id.Int64
	ts := at.Time

	return domain.LedgerAnchor{ID: &v, At: &ts}
}
