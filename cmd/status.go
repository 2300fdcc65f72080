package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	statusTenant string
	statusJSON   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a tenant's quota usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		status, err := env.Orchestrator.Status(ctx, statusTenant)
		if err != nil {
			return err
		}

		if statusJSON {
			return json.NewEncoder(os.Stdout).Encode(status)
		}

		fmt.Printf("Tenant %s\n", status.TenantID)
		fmt.Printf("  Daily:      %d/%d used, %d remaining (resets %s)\n",
			status.DailyUsed, status.DailyLimit, status.DailyRemaining, status.ResetAt.Format("15:04 MST"))
		fmt.Printf("  Concurrent: %d/%d in flight\n", status.ConcurrentUsed, status.ConcurrentLimit)
		fmt.Printf("  Cache:      %s\n", status.CacheBackend)
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusTenant, "tenant", "default", "tenant to inspect")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "emit as JSON")
	rootCmd.AddCommand(statusCmd)
}
