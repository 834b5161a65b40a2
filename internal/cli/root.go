package cli

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/typetrace/internal/config"
	"github.com/roach88/typetrace/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
	Format     string // "json" | "text"

	// Now overrides the run clock (for testing). Defaults to time.Now.
	Now func() time.Time

	// RunIDs overrides the index run id generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDs store.RunIDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the typetrace CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "typetrace <input> <output>",
		Short: "Normalize a TypeScript type-trace dump",
		Long: `Normalize the types.json dump written by tsc --generateTrace.

Every raw type record is classified into a semantic kind (Union,
GenericInstantiation, AnonymousFunction, ...), reduced to the fields that
matter for that kind, and written to the output as one JSON array.

Input and output may be compressed; the codec is chosen by extension
(.gz, .br, .zst). By default the input is read one record per line, the
layout tsc writes. Use -m for any other JSON array layout.

Examples:
  typetrace types.json types.norm.json
  typetrace -m types.json.gz types.norm.json.br
  typetrace --index runs.db types.json types.norm.json
  typetrace kinds --index runs.db`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(2)(cmd, args); err != nil {
				return commandError("invalid arguments", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return commandError(fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(opts, cmd, args[0], args[1])
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	cmd.PersistentFlags().String("color", config.ColorAuto, "colorize output (auto|always|never)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format for queries (json|text)")

	cmd.Flags().BoolP("multiline", "m", false, "parse the input as one streamed JSON array")
	cmd.Flags().String("index", "", "record the run in a SQLite kind index")

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return commandError("invalid arguments", err)
	})

	cmd.AddCommand(NewKindsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
