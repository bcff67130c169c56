package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openfroyo/lzconfig/pkg/config"
	"github.com/openfroyo/lzconfig/pkg/stores"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// report is the JSON form of a validation.
type report struct {
	*config.LoadResult
	ErrorKind config.ErrorKind `json:"errorKind,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func newValidateCommand(opts *globalOptions) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate global-config.yaml",
		Long: `Validate a landing zone global configuration.

This command checks:
  - YAML syntax validity
  - Schema conformance (every violation is reported)
  - Partition rules for the home region
  - Organization policies (OPA/rego)

The built-in policies only warn; policies loaded with --policy reject the
configuration when their severity is error or critical.

Exit status is 1 when the configuration is rejected and 2 on any other
failure.

path may be a directory containing global-config.yaml or the file itself.`,
		Example: `  # Validate the configuration in the current directory
  lzconfig validate

  # Validate and record the outcome in the history database
  lzconfig validate --record ./config

  # Machine-readable result with extra policies
  lzconfig validate --json --policy ./policies ./config`,
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

			log.Debug().Str("path", path).Bool("record", record).Msg("Validating configuration")

			result, loadErr := loader.LoadFile(ctx, path)
			if result == nil {
				return loadErr
			}

			if record {
				if err := recordResult(cmd, opts, result); err != nil {
					return err
				}
			}

			if err := printResult(cmd.OutOrStdout(), opts.jsonOutput, result, loadErr); err != nil {
				return err
			}
			if loadErr != nil {
				return ErrInvalid
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "record the outcome in the history database")

	return cmd
}

// resolveConfigPath maps the optional argument to a configuration file.
func resolveConfigPath(args []string) (string, error) {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return filepath.Join(path, config.FileName), nil
	}
	return path, nil
}

func recordResult(cmd *cobra.Command, opts *globalOptions, result *config.LoadResult) error {
	ctx := cmd.Context()

	store, err := opts.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := stores.FromLoadResult(result)
	if err != nil {
		return err
	}
	if err := store.RecordValidation(ctx, v); err != nil {
		return err
	}

	log.Info().Str("id", v.ID).Str("status", string(v.Status)).Msg("Validation recorded")
	return nil
}

func printResult(w io.Writer, asJSON bool, result *config.LoadResult, loadErr error) error {
	if asJSON {
		r := report{LoadResult: result}
		if loadErr != nil {
			r.ErrorKind = config.KindOf(loadErr)
			r.Error = loadErr.Error()
		}
		return writeJSON(w, r)
	}

	if loadErr != nil {
		_, err := fmt.Fprintln(w, loadErr)
		return err
	}
	_, err := fmt.Fprintln(w, "valid")
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
