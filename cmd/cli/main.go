package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
	actorID string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "panelledger-cli",
		Short: "PanelLedger CLI tool",
		Long:  `A command line interface for interacting with the PanelLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the PanelLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&actorID, "actor", "cli", "Actor recorded in the audit trail")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	var date string

	panelCmd := &cobra.Command{
		Use:   "panel [id]",
		Short: "Show a panel's daily ledger row",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/ledger/panel/" + args[0] + dateQuery(date))
		},
	}
	panelCmd.Flags().StringVar(&date, "date", "", "Ledger date (YYYY-MM-DD, default today)")

	bankCmd := &cobra.Command{
		Use:   "bank [id]",
		Short: "Show a bank account's daily ledger row",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/ledger/bank/" + args[0] + dateQuery(date))
		},
	}
	bankCmd.Flags().StringVar(&date, "date", "", "Ledger date (YYYY-MM-DD, default today)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Show the cached daily ledger aggregate",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/ledger/snapshot")
		},
	}

	var entityType, entityID string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Run a balance integrity check",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/ledger/validate", map[string]string{
				"entity_type": entityType,
				"entity_id":   entityID,
				"date":        date,
			})
		},
	}
	validateCmd.Flags().StringVar(&entityType, "entity-type", "", "Entity type (panel or bank)")
	validateCmd.Flags().StringVar(&entityID, "entity-id", "", "Entity ID (omit to sweep every row)")
	validateCmd.Flags().StringVar(&date, "date", "", "Ledger date (YYYY-MM-DD, default today)")

	var lock bool

	lockCmd := &cobra.Command{
		Use:   "lock",
		Short: "Lock or unlock a daily ledger row",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/ledger/lock", map[string]any{
				"entity_type": entityType,
				"entity_id":   entityID,
				"date":        date,
				"lock":        lock,
			})
		},
	}
	lockCmd.Flags().StringVar(&entityType, "entity-type", "", "Entity type (panel or bank)")
	lockCmd.Flags().StringVar(&entityID, "entity-id", "", "Entity ID")
	lockCmd.Flags().StringVar(&date, "date", "", "Ledger date (YYYY-MM-DD, default today)")
	lockCmd.Flags().BoolVar(&lock, "lock", true, "true locks the row, false unlocks it")

	ledgerCmd.AddCommand(panelCmd, bankCmd, snapshotCmd, validateCmd, lockCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Reset commands
	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Daily reset operations",
	}

	triggerCmd := &cobra.Command{
		Use:   "trigger",
		Short: "Run a rollover into the given date (today when omitted)",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/ledger/reset", map[string]string{"date": date})
		},
	}
	triggerCmd.Flags().StringVar(&date, "date", "", "Target date (YYYY-MM-DD, default today)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Check whether the daily reset has completed",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/ledger/reset/status" + dateQuery(date))
		},
	}
	statusCmd.Flags().StringVar(&date, "date", "", "Ledger date (YYYY-MM-DD, default today)")

	resetCmd.AddCommand(triggerCmd, statusCmd)
	rootCmd.AddCommand(resetCmd)

	// Audit trail
	var limit int

	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "List audit log entries",
		Run: func(cmd *cobra.Command, args []string) {
			get(fmt.Sprintf("/api/v1/audit?limit=%d", limit))
		},
	}
	auditCmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to return")
	rootCmd.AddCommand(auditCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func dateQuery(date string) string {
	if date == "" {
		return ""
	}
	return "?date=" + date
}

func get(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func post(path string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", actorID)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	printResponse(resp)
}

func printResponse(resp *http.Response) {
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		fmt.Println(string(body))
		return
	}

	printJSON(decoded)
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Failed to render response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
