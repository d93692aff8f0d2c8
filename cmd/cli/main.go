package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type options struct {
	baseURL        string
	timeout        time.Duration
	idempotencyKey string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "axiompay-cli",
		Short:         "Axiom Pay CLI tool",
		Long:          `A command line interface for issuing HBAR subscriptions through the Axiom Pay API.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:3001", "Base URL of the Axiom Pay API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "Request timeout")

	rootCmd.AddCommand(newSubscribeCmd(opts), newBalanceCmd(opts), newHealthCmd(opts))

	return rootCmd
}

func newSubscribeCmd(opts *options) *cobra.Command {
	var payer, amount, frequency string

	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Schedule an HBAR payment from a payer to the business account",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(map[string]any{
				"payerAccountId": payer,
				"amountUnits":    json.Number(amount),
				"frequency":      frequency,
			})
			if err != nil {
				return fmt.Errorf("amount %q is not a number", amount)
			}

			headers := map[string]string{"Content-Type": "application/json"}
			if opts.idempotencyKey != "" {
				headers["Idempotency-Key"] = opts.idempotencyKey
			}

			return do(cmd, opts, http.MethodPost, "/api/subscribe", bytes.NewReader(body), headers)
		},
	}

	cmd.Flags().StringVar(&payer, "payer", "", "Payer account id (shard.realm.num)")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount in HBAR")
	cmd.Flags().StringVar(&frequency, "frequency", "", "Recurrence label recorded with the subscription")
	cmd.Flags().StringVar(&opts.idempotencyKey, "idempotency-key", "", "Idempotency-Key header value")
	_ = cmd.MarkFlagRequired("payer")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newBalanceCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <account-id>",
		Short: "Show the HBAR balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return do(cmd, opts, http.MethodGet, "/api/balance/"+url.PathEscape(args[0]), nil, nil)
		},
	}
}

func newHealthCmd(opts *options) *cobra.Command {
	var ready bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/health"
			if ready {
				path = "/ready"
			}
			return do(cmd, opts, http.MethodGet, path, nil, nil)
		},
	}

	cmd.Flags().BoolVar(&ready, "ready", false, "Query the readiness check instead of liveness")

	return cmd
}

// do sends the request and pretty-prints the JSON response. Non-2xx
// responses are printed and reported as an error.
func do(cmd *cobra.Command, opts *options, method, path string, body io.Reader, headers map[string]string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(opts.baseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	printJSON(cmd.OutOrStdout(), raw)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(w io.Writer, raw []byte) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		fmt.Fprintln(w, string(raw))
		return
	}
	fmt.Fprintln(w, buf.String())
}
