package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/versemark/versemark-server/internal/domain"
)

func TestSeed_Idempotent(t *testing.T) {
	dir := t.TempDir()

	first := runJSON[SeedResult](t, dir, "seed")
	assert.Equal(t, len(seedLabels), first.LabelsCreated)
	assert.Equal(t, len(seedBookmarks), first.BookmarksCreated)

	second := runJSON[SeedResult](t, dir, "seed")
	assert.Zero(t, second.LabelsCreated)
	assert.Zero(t, second.BookmarksCreated)
}

func TestLabels_VirtualFirst(t *testing.T) {
	dir := t.TempDir()
	runJSON[SeedResult](t, dir, "seed")

	labels := runJSON[[]domain.Label](t, dir, "labels")
	require.Len(t, labels, 5)
	assert.Equal(t, domain.LabelAllID, labels[0].ID)
	assert.Equal(t, domain.LabelUnlabelledID, labels[1].ID)
	assert.Equal(t, "Memorize", labels[2].Name)
	assert.Equal(t, "Prayer", labels[3].Name)
	assert.Equal(t, "Promises", labels[4].Name)

	assignable := runJSON[[]domain.Label](t, dir, "labels", "--assignable")
	assert.Len(t, assignable, 3)
}

func TestLabels_Text(t *testing.T) {
	out, err := run(t, t.TempDir(), "labels")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "All")
	assert.Contains(t, out, "Unlabelled")
}

func TestBookmarks_ByLabel(t *testing.T) {
	dir := t.TempDir()
	runJSON[SeedResult](t, dir, "seed")

	all := runJSON[[]domain.Bookmark](t, dir, "bookmarks")
	require.Len(t, all, len(seedBookmarks))
	assert.Equal(t, "Gen.1.1", all[0].Anchor.String())

	unlabelled := runJSON[[]domain.Bookmark](t, dir, "bookmarks", "--label=-998")
	require.Len(t, unlabelled, 1)
	assert.Equal(t, "Matt.5.3", unlabelled[0].Anchor.String())

	labels := runJSON[[]domain.Label](t, dir, "labels", "--assignable")
	var memorize int64
	for _, l := range labels {
		if l.Name == "Memorize" {
			memorize = l.ID
		}
	}
	require.NotZero(t, memorize)

	tagged := runJSON[[]domain.Bookmark](t, dir, "bookmarks", "--label", itoa(memorize))
	assert.Len(t, tagged, 3)
}

func TestBookmarks_UnknownLabel(t *testing.T) {
	_, err := run(t, t.TempDir(), "bookmarks", "--label", "42")
	require.Error(t, err)
}

func TestSpeakLabel_StableAcrossRuns(t *testing.T) {
	dir := t.TempDir()

	first := runJSON[domain.Label](t, dir, "speak-label")
	assert.Equal(t, domain.SpeakLabelName, first.Name)
	assert.Positive(t, first.ID)

	second := runJSON[domain.Label](t, dir, "speak-label")
	assert.Equal(t, first.ID, second.ID)

	// Without the stored id the label is found by name, not recreated.
	reset := runJSON[domain.Label](t, dir, "speak-label", "--reset")
	assert.Equal(t, first.ID, reset.ID)

	labels := runJSON[[]domain.Label](t, dir, "labels", "--assignable")
	assert.Len(t, labels, 1)
}

func TestSpeakLabel_ConfiguredName(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SPEAK_LABEL_NAME", "Read aloud")

	first := runJSON[domain.Label](t, dir, "speak-label")
	assert.Equal(t, "Read aloud", first.Name)

	reset := runJSON[domain.Label](t, dir, "speak-label", "--reset")
	assert.Equal(t, first.ID, reset.ID)

	labels := runJSON[[]domain.Label](t, dir, "labels", "--assignable")
	require.Len(t, labels, 1)
	assert.Equal(t, "Read aloud", labels[0].Name)
}

func TestSpeakLabel_NameFlagBeatsEnv(t *testing.T) {
	t.Setenv("SPEAK_LABEL_NAME", "Read aloud")

	label := runJSON[domain.Label](t, t.TempDir(), "--speak-label-name", "Recite", "speak-label")
	assert.Equal(t, "Recite", label.Name)
}

func TestSpeakLabel_FromEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SPEAK_LABEL_NAME", "")
	require.NoError(t, os.Unsetenv("SPEAK_LABEL_NAME"))

	envFile := filepath.Join(dir, "vm.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SPEAK_LABEL_NAME=Aloud\n"), 0o600))

	label := runJSON[domain.Label](t, dir, "--env-file", envFile, "speak-label")
	assert.Equal(t, "Aloud", label.Name)
}

func TestLabels_Locale(t *testing.T) {
	dir := t.TempDir()
	runJSON[SeedResult](t, dir, "seed")
	runJSON[domain.Label](t, dir, "--speak-label-name", "Öl", "speak-label")

	root := runJSON[[]domain.Label](t, dir, "labels", "--assignable")
	require.Len(t, root, 4)
	assert.Equal(t, "Öl", root[1].Name)

	// Swedish places Ö after Z.
	swedish := runJSON[[]domain.Label](t, dir, "--label-locale", "sv", "labels", "--assignable")
	require.Len(t, swedish, 4)
	assert.Equal(t, "Öl", swedish[3].Name)
}
