package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/autoscout/internal/model"
)

var (
	searchLocation string
	searchTenant   string
	searchJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <keywords>",
	Short: "Find companies hiring for automatable roles",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.Orchestrator.SearchOpportunities(ctx, model.SearchQuery{
			TenantID: searchTenant,
			Keywords: args[0],
			Location: searchLocation,
		})
		if err != nil {
			return err
		}

		if searchJSON {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		fmt.Printf("Found %d postings, analyzed %d companies", result.TotalJobsFound, result.CompaniesAnalyzed)
		if result.FromCache {
			fmt.Print(" (cached)")
		}
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "COMPANY\tSCORE\tCONFIDENCE\tJOBS")
		for _, opp := range result.Opportunities {
			fmt.Fprintf(w, "%s\t%.1f\t%.2f\t%d\n", opp.Company.Name, opp.Score, opp.Confidence, opp.JobCount)
		}
		return w.Flush()
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "restrict the search to a location")
	searchCmd.Flags().StringVar(&searchTenant, "tenant", "default", "tenant the request counts against")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(searchCmd)
}
