package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/infrastructure/auth"
	"github.com/cajafin/ledger/internal/infrastructure/config"
	"github.com/cajafin/ledger/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cajafin-cli",
		Short: "Cajafin back office CLI",
		Long:  `A command line interface for operating the Cajafin ledger service.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Cajafin API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(reconcileCmd(), unlinkedCmd(), migrateCmd(), tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Verify the balance invariant of your accounts",
		Run: func(cmd *cobra.Command, args []string) {
			body := getJSON("/api/v1/reconciliation")

			var results []struct {
				AccountID    string `json:"account_id"`
				Difference   string `json:"difference"`
				IsReconciled bool   `json:"is_reconciled"`
			}
			if err := json.Unmarshal(body, &results); err != nil {
				fmt.Printf("Failed to parse response: %v\n", err)
				os.Exit(1)
			}

			drifted := 0
			for _, r := range results {
				status := "OK"
				if !r.IsReconciled {
					status = "DRIFT " + r.Difference
					drifted++
				}
				fmt.Printf("%s  %s\n", r.AccountID, status)
			}

			if drifted > 0 {
				fmt.Printf("%d account(s) out of balance\n", drifted)
				os.Exit(1)
			}
			fmt.Println("All accounts reconciled")
		},
	}
}

func unlinkedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlinked",
		Short: "List integrated movements whose cash side does not point back",
		Run: func(cmd *cobra.Command, args []string) {
			body := getJSON("/api/v1/reconciliation/unlinked")

			var result struct {
				Movements []struct {
					ID   string `json:"id"`
					Code string `json:"code"`
				} `json:"movements"`
				Total int64 `json:"total"`
			}
			if err := json.Unmarshal(body, &result); err != nil {
				fmt.Printf("Failed to parse response: %v\n", err)
				os.Exit(1)
			}

			for _, m := range result.Movements {
				fmt.Printf("%s  %s\n", m.ID, m.Code)
			}
			fmt.Printf("%d half-linked movement(s)\n", result.Total)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations applied")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if err := postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
				fmt.Printf("Rollback failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Last migration rolled back")
		},
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		name   string
		email  string
		role   string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a JWT for local testing",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustLoadConfig()
			if cfg.JWTSecret == "" {
				fmt.Println("JWT_SECRET is not set")
				os.Exit(1)
			}

			actor := domain.Actor{
				UserID:      userID,
				DisplayName: name,
				Email:       email,
				Role:        domain.Role(role),
			}
			if !actor.Role.IsValid() {
				fmt.Printf("Unknown role %q\n", role)
				os.Exit(1)
			}

			manager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
			signed, err := manager.Generate(actor)
			if err != nil {
				fmt.Printf("Failed to sign token: %v\n", err)
				os.Exit(1)
			}

			fmt.Println(signed)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "dev", "User ID claim")
	cmd.Flags().StringVar(&name, "name", "Desarrollo", "Display name claim")
	cmd.Flags().StringVar(&email, "email", "dev@localhost", "Email claim")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleAdmin), "Role claim")

	return cmd
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func getJSON(path string) []byte {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	return body
}
