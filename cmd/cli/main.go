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

	"github.com/snap2code/creditledger/internal/infrastructure/payment"
)

var (
	baseURL    string
	timeout    time.Duration
	adminToken string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "creditledger-cli",
		Short: "Credit ledger CLI tool",
		Long:  `A command line interface for the credit ledger's administrative API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the credit ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&adminToken, "token", os.Getenv("ADMIN_TOKEN"), "Admin JWT")

	rootCmd.AddCommand(reconcileCmd(), adjustCmd(), promoCmd(), webhookCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile <account-id>",
		Short: "Replay an account's ledger against its stored balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			result := doRequest(http.MethodGet, "/api/v1/admin/accounts/"+args[0]+"/reconcile", nil)

			if reconciled, ok := result["is_reconciled"].(bool); ok && reconciled {
				fmt.Println("Reconciliation PASSED")
			} else {
				fmt.Println("Reconciliation FAILED")
			}
			fmt.Printf("Recorded balance: %v\n", result["recorded_balance"])
			fmt.Printf("Replayed balance: %v\n", result["replayed_balance"])
			fmt.Printf("Difference:       %v\n", result["difference"])
			fmt.Printf("Entries replayed: %v\n", result["entry_count"])
		},
	}
}

func adjustCmd() *cobra.Command {
	var accountID, amount, reason string

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Apply a signed administrative balance correction",
		Run: func(cmd *cobra.Command, args []string) {
			result := doRequest(http.MethodPost, "/api/v1/admin/credits/adjust", map[string]any{
				"account_id": accountID,
				"amount":     amount,
				"reason":     reason,
			})

			fmt.Printf("Adjustment applied\n")
			fmt.Printf("Entry ID:      %v\n", result["id"])
			fmt.Printf("Balance after: %v\n", result["balance_after"])
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "Account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Signed credit amount")
	cmd.Flags().StringVar(&reason, "reason", "", "Audit reason")
	cmd.MarkFlagRequired("account")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("reason")

	return cmd
}

func promoCmd() *cobra.Command {
	promoRoot := &cobra.Command{
		Use:   "promo",
		Short: "Promo code operations",
	}

	var code, credits, expiresAt string
	var maxUses, maxUsesPerUser int

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a promo code",
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]any{
				"code":              code,
				"credits":           credits,
				"max_uses":          maxUses,
				"max_uses_per_user": maxUsesPerUser,
			}
			if expiresAt != "" {
				body["expires_at"] = expiresAt
			}

			result := doRequest(http.MethodPost, "/api/v1/admin/promo", body)

			fmt.Printf("Promo code created\n")
			fmt.Printf("ID:   %v\n", result["id"])
			fmt.Printf("Code: %v\n", result["code"])
		},
	}

	createCmd.Flags().StringVar(&code, "code", "", "Promo code string")
	createCmd.Flags().StringVar(&credits, "credits", "", "Credits granted per redemption")
	createCmd.Flags().IntVar(&maxUses, "max-uses", 0, "Global redemption cap (0 = unlimited)")
	createCmd.Flags().IntVar(&maxUsesPerUser, "max-uses-per-user", 1, "Per-account redemption cap (0 = unlimited)")
	createCmd.Flags().StringVar(&expiresAt, "expires-at", "", "Expiry timestamp, RFC 3339")
	createCmd.MarkFlagRequired("code")
	createCmd.MarkFlagRequired("credits")

	promoRoot.AddCommand(createCmd)
	return promoRoot
}

func webhookCmd() *cobra.Command {
	webhookRoot := &cobra.Command{
		Use:   "webhook",
		Short: "Webhook operations",
	}

	var secret, payloadFile string

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Sign a captured event payload and deliver it to the webhook endpoint",
		Run: func(cmd *cobra.Command, args []string) {
			payload, err := os.ReadFile(payloadFile)
			if err != nil {
				fmt.Printf("Failed to read payload: %v\n", err)
				os.Exit(1)
			}

			req, err := http.NewRequest(http.MethodPost, baseURL+"/payment/webhook", bytes.NewReader(payload))
			if err != nil {
				fmt.Printf("Failed to build request: %v\n", err)
				os.Exit(1)
			}
			req.Header.Set(payment.SignatureHeader, payment.SignPayload(secret, time.Now(), payload))

			client := &http.Client{Timeout: timeout}
			resp, err := client.Do(req)
			if err != nil {
				fmt.Printf("Error making request: %v\n", err)
				os.Exit(1)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			fmt.Printf("Status: %d\nResponse: %s\n", resp.StatusCode, string(body))
			if resp.StatusCode != http.StatusOK {
				os.Exit(1)
			}
		},
	}

	replayCmd.Flags().StringVar(&secret, "secret", os.Getenv("PAYMENT_WEBHOOK_SECRET"), "Webhook endpoint secret")
	replayCmd.Flags().StringVar(&payloadFile, "payload", "", "Path to the raw event JSON")
	replayCmd.MarkFlagRequired("payload")

	webhookRoot.AddCommand(replayCmd)
	return webhookRoot
}

func doRequest(method, path string, body map[string]any) map[string]any {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if adminToken != "" {
		req.Header.Set("Authorization", "Bearer "+adminToken)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 300 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(respBody))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(respBody, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	return result
}
