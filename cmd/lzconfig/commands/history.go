package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/openfroyo/lzconfig/pkg/stores"
	"github.com/spf13/cobra"
)

func newHistoryCommand(opts *globalOptions) *cobra.Command {
	var (
		limit  int
		source string
		status string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validations",
		Long: `List validations recorded with 'lzconfig validate --record', newest first.`,
		Example: `  # Last 20 validations
  lzconfig history --limit 20

  # Only rejected validations of one file
  lzconfig history --status rejected --source ./config/global-config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			filter := stores.ValidationFilter{Limit: limit}
			if source != "" {
				filter.Source = &source
			}
			if status != "" {
				st := stores.ValidationStatus(status)
				if st != stores.ValidationStatusValid && st != stores.ValidationStatusRejected {
					return fmt.Errorf("invalid status %q (must be 'valid' or 'rejected')", status)
				}
				filter.Status = &st
			}

			validations, err := store.ListValidations(ctx, filter)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), validations)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tRECORDED\tSTATUS\tISSUES\tSOURCE")
			for _, v := range validations {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					v.ID, v.CreatedAt.Local().Format(time.RFC3339), v.Status, v.IssueCount(), v.Source)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", stores.DefaultListLimit, "maximum number of validations to list")
	cmd.Flags().StringVar(&source, "source", "", "only validations of this source")
	cmd.Flags().StringVar(&status, "status", "", "only validations with this status (valid, rejected)")

	cmd.AddCommand(newHistoryShowCommand(opts))
	cmd.AddCommand(newHistoryPruneCommand(opts))

	return cmd
}

func newHistoryShowCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded validation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			v, err := store.GetValidation(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, v)
			}

			fmt.Fprintf(out, "id:       %s\n", v.ID)
			fmt.Fprintf(out, "source:   %s\n", v.Source)
			fmt.Fprintf(out, "status:   %s (%s)\n", v.Status, v.State)
			fmt.Fprintf(out, "recorded: %s\n", v.CreatedAt.Local().Format(time.RFC3339))
			if v.ErrorKind != nil {
				fmt.Fprintf(out, "kind:     %s\n", *v.ErrorKind)
			}
			for _, issue := range v.Issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
			if v.Snapshot != nil {
				fmt.Fprintf(out, "---\n%s", strings.TrimLeft(*v.Snapshot, "\n"))
			}
			return nil
		},
	}
}

func newHistoryPruneCommand(opts *globalOptions) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old validation records",
		Example: `  # Keep the last 30 days
  lzconfig history prune --older-than 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			store, err := opts.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			deleted, err := store.PruneValidations(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d validations\n", deleted)
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "delete validations recorded before this age")

	return cmd
}
