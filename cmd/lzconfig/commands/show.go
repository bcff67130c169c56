package commands

import (
	"github.com/spf13/cobra"
)

func newShowCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print the defaulted configuration",
		Long: `Load a global configuration and print it with every default applied.

Output is YAML unless --json is given.`,
		Example: `  # Show the effective configuration
  lzconfig show ./config

  # As JSON
  lzconfig show --json ./config`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path, err := resolveConfigPath(args)
			if err != nil {
				return err
			}

			loader, _, err := opts.newLoader(ctx)
			if err != nil {
				return err
			}

			result, err := loader.LoadFile(ctx, path)
			if err != nil {
				return err
			}

			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), result.Config)
			}

			out, err := result.Config.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	return cmd
}
