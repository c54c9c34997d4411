package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/versemark/versemark-server/internal/domain"
	"github.com/versemark/versemark-server/internal/service"
)

type seedBookmark struct {
	anchor string
	note   string
	labels []string
}

var seedLabels = []domain.Label{
	{Name: "Promises", Color: -0x00_33_cc_67},
	{Name: "Prayer", Color: -0x00_ff_99_34},
	{Name: "Memorize", Color: -0x00_00_66_ff},
}

var seedBookmarks = []seedBookmark{
	{anchor: "Gen.1.1", labels: []string{"Memorize"}},
	{anchor: "Ps.23.1-Ps.23.6", note: "Read at evening prayer", labels: []string{"Prayer", "Memorize"}},
	{anchor: "John.3.16", labels: []string{"Promises", "Memorize"}},
	{anchor: "Rom.8.28", labels: []string{"Promises"}},
	{anchor: "Phil.4.6-Phil.4.7", labels: []string{"Prayer"}},
	{anchor: "Matt.5.3"},
}

// SeedResult summarizes a seed run.
type SeedResult struct {
	LabelsCreated    int `json:"labels_created"`
	BookmarksCreated int `json:"bookmarks_created"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var document string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the data directory with sample labels and bookmarks",
		Long: `Insert a small set of labels and bookmarks for development. Running it
again reuses labels with the same name and bookmarks at the same verse.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer ws.Close()

			res, err := seed(cmd.Context(), ws.bookmarks, document)
			if err != nil {
				return err
			}

			f := newFormatter(rootOpts, cmd.OutOrStdout())
			return f.Emit(res, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Seeded %d label(s) and %d bookmark(s)\n", res.LabelsCreated, res.BookmarksCreated)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&document, "document", "KJV", "document initials stored on seeded bookmarks")
	return cmd
}

func seed(ctx context.Context, svc *service.BookmarkService, document string) (SeedResult, error) {
	var res SeedResult

	existing, err := svc.AssignableLabels(ctx)
	if err != nil {
		return res, err
	}
	byName := make(map[string]int64, len(existing))
	for _, l := range existing {
		byName[l.Name] = l.ID
	}

	for _, l := range seedLabels {
		if _, ok := byName[l.Name]; ok {
			continue
		}
		saved, err := svc.SaveLabel(ctx, &l, service.DoNotSync())
		if err != nil {
			return res, fmt.Errorf("seed label %q: %w", l.Name, err)
		}
		byName[saved.Name] = saved.ID
		res.LabelsCreated++
	}

	for _, sb := range seedBookmarks {
		r, err := domain.ParseVerseRange(sb.anchor)
		if err != nil {
			return res, err
		}

		existing, err := svc.FirstBookmarkStartingAt(ctx, r.Start)
		if err != nil {
			return res, err
		}
		if existing != nil {
			continue
		}

		b := domain.NewBookmark(r, document)
		if sb.note != "" {
			b.Notes = &sb.note
		}
		ids := make([]int64, 0, len(sb.labels))
		for _, name := range sb.labels {
			ids = append(ids, byName[name])
		}
		if _, err := svc.AddOrUpdateBookmark(ctx, b, ids, service.DoNotSync()); err != nil {
			return res, fmt.Errorf("seed bookmark %s: %w", sb.anchor, err)
		}
		res.BookmarksCreated++
	}

	return res, nil
}
