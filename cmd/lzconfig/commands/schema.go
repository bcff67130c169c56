package commands

import (
	"fmt"
	"os"

	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/openfroyo/lzconfig/pkg/schema"
	"github.com/spf13/cobra"
)

func newSchemaCommand() *cobra.Command {
	var (
		list  bool
		check string
	)

	cmd := &cobra.Command{
		Use:   "schema [name]",
		Short: "Print the configuration schema as CUE",
		Long: `Print a schema of the global configuration document as a CUE definition.

Without a name the full GlobalConfig schema is printed. --check unifies a
YAML document with the CUE rendering instead of printing it.`,
		Example: `  # Full schema
  lzconfig schema

  # A single section
  lzconfig schema LoggingConfig

  # Check a document against the CUE rendering
  lzconfig schema --check ./config/global-config.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := config.DefaultRegistry()
			out := cmd.OutOrStdout()

			if list {
				for _, name := range registry.Names() {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			name := config.SchemaGlobalConfig
			if len(args) > 0 {
				name = args[0]
			}
			d, ok := registry.Get(name)
			if !ok {
				return fmt.Errorf("unknown schema %q", name)
			}

			if check != "" {
				content, err := os.ReadFile(check)
				if err != nil {
					return err
				}
				generic, err := config.Deserialize(content)
				if err != nil {
					return err
				}
				if err := schema.ValidateCUE(d, generic); err != nil {
					fmt.Fprintln(out, err)
					return ErrInvalid
				}
				fmt.Fprintln(out, "valid")
				return nil
			}

			_, err := fmt.Fprint(out, schema.ExportCUE(d))
			return err
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list schema names")
	cmd.Flags().StringVar(&check, "check", "", "YAML document to check against the CUE schema")

	return cmd
}
