package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/versemark/versemark-server/internal/domain"
)

// NewLabelsCommand creates the labels command.
func NewLabelsCommand(rootOpts *RootOptions) *cobra.Command {
	var assignable bool

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "List labels, virtual labels first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			var labels []domain.Label
			if assignable {
				labels, err = ws.bookmarks.AssignableLabels(cmd.Context())
			} else {
				labels, err = ws.bookmarks.AllLabels(cmd.Context())
			}
			if err != nil {
				return err
			}

			f := newFormatter(rootOpts, cmd.OutOrStdout())
			return f.Emit(labels, func(w io.Writer) error {
				rows := make([][]any, len(labels))
				for i, l := range labels {
					rows[i] = []any{l.ID, l.Name, fmt.Sprintf("#%08X", uint32(l.Color)), l.IsVirtual()}
				}
				return f.Table(w, []any{"ID", "NAME", "COLOR", "VIRTUAL"}, rows)
			})
		},
	}

	cmd.Flags().BoolVar(&assignable, "assignable", false, "only labels that can be attached to bookmarks")
	return cmd
}
