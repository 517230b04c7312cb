package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/saldopos/saldo/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "saldo-cli",
		Short: "Saldo CLI tool",
		Long:  `A command line interface for the saldo balance engine API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the saldo API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(balanceCmd(), cacheCmd(), ledgerCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Balance queries",
	}

	var asOf string

	getCmd := &cobra.Command{
		Use:   "get <accountID>",
		Short: "Get one account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("account id must be numeric: %w", err)
			}

			return getJSON("/api/v1/balances/" + args[0] + asOfQuery(asOf))
		},
	}
	getCmd.Flags().StringVar(&asOf, "as-of", "", "Balance as of this RFC 3339 timestamp")

	var accounts []int64
	var listAsOf string

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List balances for accounts (all accounts when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if len(accounts) > 0 {
				q.Set("account_ids", joinIDs(accounts))
			}
			if listAsOf != "" {
				q.Set("as_of", listAsOf)
			}

			target := "/api/v1/balances"
			if encoded := q.Encode(); encoded != "" {
				target += "?" + encoded
			}

			return getJSON(target)
		},
	}
	listCmd.Flags().Int64SliceVar(&accounts, "accounts", nil, "Account IDs to query")
	listCmd.Flags().StringVar(&listAsOf, "as-of", "", "Balances as of this RFC 3339 timestamp")

	cmd.AddCommand(getCmd, listCmd)

	return cmd
}

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Balance cache maintenance",
	}

	var rebuildAccounts []int64
	var idempotencyKey string

	rebuildCmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute cache rows (all active accounts when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := map[string]string{}
			if idempotencyKey != "" {
				headers["Idempotency-Key"] = idempotencyKey
			}

			return doJSON(http.MethodPost, "/api/v1/balances/rebuild",
				accountsBody(rebuildAccounts), headers)
		},
	}
	rebuildCmd.Flags().Int64SliceVar(&rebuildAccounts, "accounts", nil, "Account IDs to rebuild")
	rebuildCmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")

	var invalidateAccounts []int64

	invalidateCmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Drop cache rows (all rows when no accounts given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doJSON(http.MethodDelete, "/api/v1/balances/cache",
				accountsBody(invalidateAccounts), nil)
		},
	}
	invalidateCmd.Flags().Int64SliceVar(&invalidateAccounts, "accounts", nil, "Account IDs to invalidate")

	cmd.AddCommand(rebuildCmd, invalidateCmd)

	return cmd
}

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check that balances and external movements agree",
		RunE: func(cmd *cobra.Command, args []string) error {
			return getJSON("/api/v1/ledger/consistency")
		},
	}

	var entryAccounts []int64
	var limit, offset int

	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "List raw ledger entries (all accounts when none given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if len(entryAccounts) > 0 {
				q.Set("account_ids", joinIDs(entryAccounts))
			}
			if limit > 0 {
				q.Set("limit", strconv.Itoa(limit))
			}
			if offset > 0 {
				q.Set("offset", strconv.Itoa(offset))
			}

			target := "/api/v1/ledger/entries"
			if encoded := q.Encode(); encoded != "" {
				target += "?" + encoded
			}

			return getJSON(target)
		},
	}
	entriesCmd.Flags().Int64SliceVar(&entryAccounts, "accounts", nil, "Account IDs to list entries for")
	entriesCmd.Flags().IntVar(&limit, "limit", 0, "Page size (server default when 0)")
	entriesCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	cmd.AddCommand(consistencyCmd, entriesCmd)

	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Schema migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, path)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, path)
		},
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url",
		os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.PersistentFlags().StringVar(&path, "path", "migrations", "Migrations directory")

	cmd.AddCommand(upCmd, downCmd)

	return cmd
}

func asOfQuery(asOf string) string {
	if asOf == "" {
		return ""
	}

	return "?as_of=" + url.QueryEscape(asOf)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}

	return strings.Join(parts, ",")
}

func accountsBody(ids []int64) []byte {
	if len(ids) == 0 {
		return []byte(`{}`)
	}

	body, _ := json.Marshal(map[string][]int64{"account_ids": ids})

	return body
}

func getJSON(path string) error {
	return doJSON(http.MethodGet, path, nil, nil)
}

func doJSON(method, path string, body []byte, headers map[string]string) error {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if len(data) == 0 {
		fmt.Println("OK")
		return nil
	}

	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		fmt.Println(string(data))
		return nil
	}

	printJSON(pretty)

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}

	fmt.Println(string(out))
}
