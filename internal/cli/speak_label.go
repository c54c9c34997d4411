package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/versemark/versemark-server/internal/service"
)

// NewSpeakLabelCommand creates the speak-label command.
func NewSpeakLabelCommand(rootOpts *RootOptions) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "speak-label",
		Short: "Show the speak label, creating it if needed",
		Long: `Resolve the speak label the way the server does. --reset forgets the
stored label id first, so the label is looked up by name again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			ctx := cmd.Context()
			if reset {
				if err := ws.prefs.Delete(ctx, service.SpeakLabelPreference); err != nil {
					return fmt.Errorf("clear speak label preference: %w", err)
				}
				ws.bookmarks.ResetSpeakLabel()
			}

			label, err := ws.bookmarks.SpeakLabel(ctx)
			if err != nil {
				return err
			}

			f := newFormatter(rootOpts, cmd.OutOrStdout())
			return f.Emit(label, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%d\t%s\n", label.ID, label.Name)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "forget the stored speak label id before resolving")
	return cmd
}
