package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/versemark/versemark-server/internal/domain"
)

// NewBookmarksCommand creates the bookmarks command.
func NewBookmarksCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		labelID int64
		order   string
	)

	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "List bookmarks, optionally for one label",
		Long: `List bookmarks. --label accepts a stored label id or one of the virtual
ids: -999 for all bookmarks, -998 for bookmarks without labels.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			ctx := cmd.Context()
			sort := domain.ParseSortOrder(order)

			var bookmarks []*domain.Bookmark
			if cmd.Flags().Changed("label") {
				bookmarks, err = ws.bookmarks.BookmarksForLabelID(ctx, labelID, sort)
			} else {
				bookmarks, err = ws.bookmarks.AllBookmarks(ctx, sort)
			}
			if err != nil {
				return err
			}

			f := newFormatter(rootOpts, cmd.OutOrStdout())
			return f.Emit(bookmarks, func(w io.Writer) error {
				rows := make([][]any, len(bookmarks))
				for i, b := range bookmarks {
					note := ""
					if b.HasNotes() {
						note = *b.Notes
					}
					rows[i] = []any{b.ID, b.Anchor.String(), b.Document, b.LastUpdatedOn.Format(time.DateTime), note}
				}
				return f.Table(w, []any{"ID", "RANGE", "DOCUMENT", "UPDATED", "NOTE"}, rows)
			})
		},
	}

	cmd.Flags().Int64Var(&labelID, "label", 0, "label id to filter by")
	cmd.Flags().StringVar(&order, "order", string(domain.OrderCanonical), "sort order (canonical|created_at|last_updated)")
	return cmd
}
