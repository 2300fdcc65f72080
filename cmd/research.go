package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/autoscout/internal/model"
)

var (
	researchName   string
	researchURL    string
	researchTenant string
	researchJSON   bool
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Run deep automation research on one company",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Orchestrator.DeepResearch(ctx, model.ResearchQuery{
			TenantID:    researchTenant,
			CompanyName: researchName,
			CompanyURL:  researchURL,
		})
		if err != nil {
			return err
		}

		if researchJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		fmt.Printf("%s: score %.1f/10", result.Company.Name, result.Score)
		if result.FromCache {
			fmt.Print(" (cached)")
		}
		fmt.Println()
		for _, f := range result.Findings {
			fmt.Printf("  [%.2f] %s\n", f.Confidence, f.Title)
			if f.Detail != "" {
				fmt.Printf("         %s\n", f.Detail)
			}
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().StringVar(&researchName, "name", "", "company name")
	researchCmd.Flags().StringVar(&researchURL, "url", "", "company website url")
	researchCmd.Flags().StringVar(&researchTenant, "tenant", "default", "tenant the request counts against")
	researchCmd.Flags().BoolVar(&researchJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(researchCmd)
}
