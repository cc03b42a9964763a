package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/naphex/ledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	timeout time.Duration
	token   string
)

// bcryptGenerate is swappable in tests.
var bcryptGenerate = bcrypt.GenerateFromPassword

func main() {
	rootCmd := &cobra.Command{
		Use:   "naphex-ledger",
		Short: "Naphex ledger CLI tool",
		Long:  `A command line interface for the Naphex ledger reconciliation service.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("LEDGER_TOKEN"), "Bearer token (defaults to LEDGER_TOKEN)")

	rootCmd.AddCommand(
		loginCmd(),
		ledgerCmd(),
		summaryCmd(),
		withdrawalsCmd(),
		payoutsCmd(),
		reconcileCmd(),
		hashPasswordCmd(),
		migrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiPost("/api/v1/auth/login", map[string]string{
				"email":    email,
				"password": password,
			})
			if err != nil {
				return err
			}

			var resp struct {
				Token string `json:"token"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Println(resp.Token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Console user email")
	cmd.Flags().StringVar(&password, "password", "", "Console user password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func ledgerCmd() *cobra.Command {
	var kind, from, to string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "ledger <userKey>",
		Short: "Show a user's reconciled ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if kind != "" {
				query.Set("type", kind)
			}
			if from != "" {
				query.Set("from", from)
			}
			if to != "" {
				query.Set("to", to)
			}
			if limit > 0 {
				query.Set("limit", fmt.Sprint(limit))
			}
			if offset > 0 {
				query.Set("offset", fmt.Sprint(offset))
			}

			path := "/api/v1/users/" + url.PathEscape(args[0]) + "/ledger"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			body, err := apiGet(path)
			if err != nil {
				return err
			}

			var resp struct {
				Transactions []struct {
					ID             string      `json:"id"`
					Kind           string      `json:"kind"`
					TokenClass     string      `json:"token_class"`
					Timestamp      string      `json:"timestamp"`
					Status         string      `json:"status"`
					AmountCredited string  `json:"amount_credited"`
					BalanceAfter   *string `json:"balance_after"`
				} `json:"transactions"`
				Total   int  `json:"total"`
				HasMore bool `json:"has_more"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			fmt.Printf("%-20s %-11s %-8s %-25s %-10s %12s %12s\n",
				"ID", "KIND", "CLASS", "TIMESTAMP", "STATUS", "AMOUNT", "BALANCE")
			for _, t := range resp.Transactions {
				balance := "-"
				if t.BalanceAfter != nil {
					balance = *t.BalanceAfter
				}
				fmt.Printf("%-20s %-11s %-8s %-25s %-10s %12s %12s\n",
					truncate(t.ID, 20), t.Kind, t.TokenClass, t.Timestamp, t.Status,
					t.AmountCredited, balance)
			}
			fmt.Printf("\nTotal: %d  HasMore: %v\n", resp.Total, resp.HasMore)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "type", "", "Filter by kind (deposit or withdrawal)")
	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	return cmd
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <userKey>",
		Short: "Show a user's ledger summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiGet("/api/v1/users/" + url.PathEscape(args[0]) + "/ledger/summary")
			if err != nil {
				return err
			}
			return printRawJSON(body)
		},
	}
}

func withdrawalsCmd() *cobra.Command {
	var status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "withdrawals",
		Short: "Payout queue operations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List payout requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if status != "" {
				query.Set("status", status)
			}
			if limit > 0 {
				query.Set("limit", fmt.Sprint(limit))
			}
			if offset > 0 {
				query.Set("offset", fmt.Sprint(offset))
			}

			path := "/api/v1/withdrawals/"
			if len(query) > 0 {
				path += "?" + query.Encode()
			}

			body, err := apiGet(path)
			if err != nil {
				return err
			}
			return printRawJSON(body)
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status (pending, approved, rejected)")
	listCmd.Flags().IntVar(&limit, "limit", 0, "Page size")
	listCmd.Flags().IntVar(&offset, "offset", 0, "Page offset")

	approveCmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending payout request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiPost("/api/v1/withdrawals/"+url.PathEscape(args[0])+"/approve", nil)
			if err != nil {
				return err
			}
			return printRawJSON(body)
		},
	}

	rejectCmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Reject a pending payout request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiPost("/api/v1/withdrawals/"+url.PathEscape(args[0])+"/reject", nil)
			if err != nil {
				return err
			}
			return printRawJSON(body)
		},
	}

	cmd.AddCommand(listCmd, approveCmd, rejectCmd)
	return cmd
}

func payoutsCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "payouts",
		Short: "Show the daily payout report",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("from", from)
			query.Set("to", to)

			body, err := apiGet("/api/v1/reports/payouts?" + query.Encode())
			if err != nil {
				return err
			}
			return printRawJSON(body)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <userKey>",
		Short: "Check a user's derived balances against the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := apiGet("/api/v1/reports/reconcile/" + url.PathEscape(args[0]))
			if err != nil {
				return err
			}

			var resp struct {
				Clean bool `json:"clean"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			if err := printRawJSON(body); err != nil {
				return err
			}
			if !resp.Clean {
				return fmt.Errorf("reconciliation found discrepancies")
			}
			fmt.Println("Reconciliation PASSED")
			return nil
		},
		Args: cobra.ExactArgs(1),
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a console user password for manual inserts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrations(databaseURL, path)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return postgres.RunMigrationsDown(databaseURL, path)
		},
	}

	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Database URL")
	cmd.PersistentFlags().StringVar(&path, "path", "internal/infrastructure/postgres/migrations", "Migrations directory")

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func apiGet(path string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return doRequest(req)
}

func apiPost(path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return doRequest(req)
}

func doRequest(req *http.Request) ([]byte, error) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// printJSON pretty-prints a value as indented JSON.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

// printRawJSON re-indents an API response body.
func printRawJSON(body []byte) error {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	printJSON(v)
	return nil
}

// truncate shortens a string to max runes, ellipsized.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
