package memory

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorylens/store"
)

func TestExportImport_RoundTrip(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	photos := []store.PhotoMetadata{
		{ID: "p1", Filename: "beach.jpg", Type: "image/jpeg", UploadedAt: base, DataURL: "data:image/jpeg;base64,AAAA"},
	}
	analyses := []store.PhotoAnalysis{{ID: "a1", PhotoID: "p1"}}
	conversations := map[string][]store.ConversationMessage{
		"p1": {msgAt("m1", "hello", base)},
	}

	backup := Export(photos, analyses, conversations)
	assert.Equal(t, BackupVersion, backup.Version)
	assert.Empty(t, backup.Photos[0].DataURL, "inline image payloads are stripped")
	assert.Equal(t, 1, backup.Stats.TotalPhotos)

	var buf bytes.Buffer
	require.NoError(t, backup.Write(&buf))

	got, err := Import(&buf)
	require.NoError(t, err)
	require.Len(t, got.Photos, 1)
	assert.Equal(t, "p1", got.Photos[0].ID)
	require.Len(t, got.Analyses, 1)
	assert.Equal(t, "a1", got.Analyses[0].ID)
	require.Len(t, got.Conversations["p1"], 1)
	assert.Equal(t, "m1", got.Conversations["p1"][0].ID)
}

func TestExport_NilCollections(t *testing.T) {
	backup := Export(nil, nil, nil)
	assert.NotNil(t, backup.Analyses)
	assert.NotNil(t, backup.Conversations)

	var buf bytes.Buffer
	require.NoError(t, backup.Write(&buf))
	_, err := Import(&buf)
	assert.NoError(t, err, "an empty export must re-import cleanly")
}

func TestImport_MissingTopLevelKey(t *testing.T) {
	cases := []string{
		`{"analyses": [], "conversations": {}}`,
		`{"photos": [], "conversations": {}}`,
		`{"photos": [], "analyses": []}`,
		`{"photos": null, "analyses": [], "conversations": {}}`,
	}
	for _, body := range cases {
		_, err := Import(strings.NewReader(body))
		require.Error(t, err, body)
		assert.Contains(t, err.Error(), "invalid backup file format")
	}
}

func TestImport_MalformedJSON(t *testing.T) {
	_, err := Import(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestBackupFilename(t *testing.T) {
	b := &Backup{ExportedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	assert.Equal(t, "memorylens-backup-2026-03-01.json", b.Filename())
}
