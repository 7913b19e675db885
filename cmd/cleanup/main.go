// Command cleanup is the operator script for pruning stored analytics: it
// calls POST /api/cleanup on a running analytics-service, either in the
// default age-based retention mode or, with --all, the bulk delete gated on
// the confirmation code.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	Endpoint string
	All      bool
	Confirm  string
	Timeout  time.Duration
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Prune stored analytics records",
		Long:  "Calls the analytics-service cleanup endpoint. Default: delete records older than the service's retention window. With --all: delete everything (requires --confirm).",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}

	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "http://localhost:8086", "base URL of the analytics service")
	cmd.Flags().BoolVar(&opts.All, "all", false, "delete every record instead of only expired ones")
	cmd.Flags().StringVar(&opts.Confirm, "confirm", "", "confirmation code, required with --all")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "request timeout")

	return cmd
}

func run(opts *options) error {
	var body []byte
	if opts.All {
		if opts.Confirm == "" {
			return fmt.Errorf("--all requires --confirm")
		}
		var err error
		body, err = json.Marshal(map[string]string{
			"action":           "delete_all",
			"confirmationCode": opts.Confirm,
		})
		if err != nil {
			return err
		}
	}

	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Post(opts.Endpoint+"/api/cleanup", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("cleanup request failed: %w", err)
	}
	defer resp.Body.Close()

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg, ok := result["error"].(string); ok {
			return fmt.Errorf("cleanup failed (%d): %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("cleanup failed: HTTP %d", resp.StatusCode)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	return nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
