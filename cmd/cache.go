package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/autoscout/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the result cache",
}

var cacheInvalidateCmd = &cobra.Command{
	Use:   "invalidate <namespace>",
	Short: "Drop all cached entries in a namespace (evidence|search|research)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ns := args[0]
		switch ns {
		case cache.NamespaceEvidence, cache.NamespaceSearch, cache.NamespaceResearch:
		default:
			return eris.Errorf("unknown namespace %q", ns)
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Cache.InvalidateNamespace(cmd.Context(), ns); err != nil {
			return eris.Wrapf(err, "invalidate %s", ns)
		}

		fmt.Printf("Invalidated namespace %s\n", ns)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInvalidateCmd)
	rootCmd.AddCommand(cacheCmd)
}
