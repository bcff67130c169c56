package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPoliciesCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policies",
		Short: "List organization policies",
		Long: `List the built-in policies and any loaded with --policy.

Policies with severity error or critical reject a configuration; warnings
are only logged.`,
		Example: `  # Built-in policies
  lzconfig policies

  # Including custom policies
  lzconfig policies --policy ./policies`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.policyEngine(cmd.Context())
			if err != nil {
				return err
			}

			policies := engine.ListPolicies()
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), policies)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSEVERITY\tENABLED\tTAGS\tDESCRIPTION")
			for _, p := range policies {
				fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n",
					p.Name, p.Severity, p.Enabled, strings.Join(p.Tags, ","), p.Description)
			}
			return tw.Flush()
		},
	}

	return cmd
}
