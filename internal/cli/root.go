// Package cli implements vmctl, the offline admin tool for a Versemark data directory.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DataPath       string
	EnvFile        string
	SpeakLabelName string
	LabelLocale    string
	Format         string // "json" | "text"
	Verbose        bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for vmctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "vmctl",
		Short: "Inspect and maintain a Versemark data directory",
		Long: `vmctl works directly on the database and settings of a Versemark data
directory. Stop the server before running commands that write.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DataPath, "data-path", "", "Versemark data directory (default $DATA_PATH or ~/.versemark)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "path to .env file")
	cmd.PersistentFlags().StringVar(&opts.SpeakLabelName, "speak-label-name", "", "name of the speak label (default $SPEAK_LABEL_NAME)")
	cmd.PersistentFlags().StringVar(&opts.LabelLocale, "label-locale", "", "BCP 47 locale for label ordering (default $LABEL_LOCALE)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log engine activity to stderr")

	cmd.AddCommand(NewLabelsCommand(opts))
	cmd.AddCommand(NewBookmarksCommand(opts))
	cmd.AddCommand(NewSpeakLabelCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}
