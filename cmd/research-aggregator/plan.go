package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-aggregator/internal/discover"
	"github.com/pdiddy/research-aggregator/internal/secrets"
	"github.com/pdiddy/research-aggregator/pkg/types"
)

var planCmd = &cobra.Command{
	Use:   "plan <query>",
	Short: "Print the request plans for a query without fetching",
	Long: `Plan shows exactly which requests search would make for the query, as YAML.
With --urls it prints one fully encoded request URL per line instead.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(viper.GetViper(), cmd.Flags())
	},
	RunE: runPlan,
}

func init() {
	def := types.DefaultConfig()
	planCmd.Flags().Int("max-items", def.MaxItems, "per-source item cap (clamped to 1..200)")
	planCmd.Flags().Bool("with-doaj", false, "include the DOAJ plan")
	planCmd.Flags().String("mailto", "", "contact address for the Crossref polite pool")
	planCmd.Flags().Bool("urls", false, "print encoded request URLs only")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	plans := discover.BuildPlans(discover.Options{
		Query:    strings.Join(args, " "),
		MaxItems: clampItems(v.GetInt("max_items")),
		WithDOAJ: v.GetBool("with_doaj"),
		Mailto:   secrets.ResolveMailto(v.GetString("mailto"), secrets.DefaultDir, secrets.DefaultEnvFile),
	})

	out := cmd.OutOrStdout()
	if urls, _ := cmd.Flags().GetBool("urls"); urls {
		for _, p := range plans {
			u, err := p.RequestURL()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\t%s\n", p.Source, u)
		}
		return nil
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(plans); err != nil {
		return fmt.Errorf("encoding plans: %w", err)
	}
	return enc.Close()
}
