package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memorylens/store"
)

func seedMemories(t *testing.T, st *store.Store) {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	st.AddPhoto(store.PhotoMetadata{ID: "p1", Filename: "beach.jpg", UploadedAt: base})
	st.AddPhoto(store.PhotoMetadata{ID: "p2", Filename: "city.jpg", UploadedAt: base})
	st.AddAnalysis(store.PhotoAnalysis{ID: "a1", PhotoID: "p1"})
	st.AddMessageToPhoto("p1", store.ConversationMessage{ID: "m1", Role: "user", Content: "a day at the beach", Timestamp: base})
	st.AddMessageToPhoto("p1", store.ConversationMessage{ID: "m2", Role: "assistant", Content: "It looks wonderful.", Timestamp: base.Add(time.Minute)})
}

func TestMemoriesStats(t *testing.T) {
	s, st := newTestServer(t)
	seedMemories(t, st)

	rec, resp := doRequest(t, s, http.MethodGet, "/memories/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data := dataOf(t, resp)
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(2), stats["totalPhotos"])
	assert.Equal(t, float64(1), stats["totalConversations"])
	assert.Equal(t, float64(2), stats["totalMessages"])
	assert.NotEmpty(t, data["storageUsed"])
}

func TestMemoriesSummaries(t *testing.T) {
	s, st := newTestServer(t)
	seedMemories(t, st)

	rec, resp := doRequest(t, s, http.MethodGet, "/memories/summaries", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summaries := dataOf(t, resp)["summaries"].([]interface{})
	require.Len(t, summaries, 2)

	first := summaries[0].(map[string]interface{})
	assert.Equal(t, "p1", first["photoId"])
	assert.Equal(t, float64(2), first["messageCount"])
	assert.Equal(t, "It looks wonderful.", first["firstMessage"])
}

func TestMemoriesSearch(t *testing.T) {
	s, st := newTestServer(t)
	seedMemories(t, st)

	rec, resp := doRequest(t, s, http.MethodGet, "/memories/search?q=beach", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	results := dataOf(t, resp)["results"].([]interface{})
	require.Len(t, results, 1)
	match := results[0].(map[string]interface{})
	assert.Equal(t, "p1", match["photoId"])

	// empty query returns no results rather than everything
	rec, resp = doRequest(t, s, http.MethodGet, "/memories/search?q=", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, dataOf(t, resp)["results"])
}

func TestMemoriesPrune(t *testing.T) {
	s, st := newTestServer(t)
	old := time.Now().AddDate(0, 0, -60)
	st.AddMessageToPhoto("p1", store.ConversationMessage{ID: "m1", Role: "user", Content: "old", Timestamp: old})
	st.AddMessageToPhoto("p2", store.ConversationMessage{ID: "m2", Role: "user", Content: "new", Timestamp: time.Now()})

	rec, resp := doRequest(t, s, http.MethodPost, "/memories/prune", jsonBody(t, map[string]int{"daysToKeep": 30}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), dataOf(t, resp)["conversations"])

	assert.Empty(t, st.GetConversationForPhoto("p1"))
	assert.Len(t, st.GetConversationForPhoto("p2"), 1)
}

func TestMemoriesPrune_DefaultsToThirtyDays(t *testing.T) {
	s, st := newTestServer(t)
	st.AddMessageToPhoto("p1", store.ConversationMessage{ID: "m1", Role: "user", Content: "old", Timestamp: time.Now().AddDate(0, 0, -40)})

	rec, _ := doRequest(t, s, http.MethodPost, "/memories/prune", bytes.NewReader([]byte("{}")))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.GetConversationForPhoto("p1"))
}

func TestMemoriesPrune_RejectsNonPositive(t *testing.T) {
	s, _ := newTestServer(t)
	rec, resp := doRequest(t, s, http.MethodPost, "/memories/prune", jsonBody(t, map[string]int{"daysToKeep": -1}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "daysToKeep must be positive", resp.Error)
}

func TestMemoriesExportImportRoundTrip(t *testing.T) {
	s, st := newTestServer(t)
	seedMemories(t, st)

	req := httptest.NewRequest(http.MethodGet, "/memories/export", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "memorylens-backup-")

	// import the export into a fresh server
	s2, st2 := newTestServer(t)
	rec2, resp := doRequest(t, s2, http.MethodPost, "/memories/import", bytes.NewReader(rec.Body.Bytes()))
	require.Equal(t, http.StatusOK, rec2.Code, resp.Error)

	data := dataOf(t, resp)
	assert.Equal(t, float64(2), data["photos"])
	assert.Equal(t, float64(1), data["analyses"])
	assert.Equal(t, float64(1), data["conversations"])

	assert.Len(t, st2.Photos(), 2)
	assert.NotNil(t, st2.GetAnalysisForPhoto("p1"))
	assert.Len(t, st2.GetConversationForPhoto("p1"), 2)
}

func TestMemoriesImport_ReplacesExistingState(t *testing.T) {
	s, st := newTestServer(t)
	st.AddPhoto(store.PhotoMetadata{ID: "stale", Filename: "stale.jpg"})
	st.AddMessageToPhoto("stale", store.ConversationMessage{ID: "m0", Role: "user", Content: "bye"})

	backup := `{"photos": [{"id": "fresh", "filename": "fresh.jpg"}], "analyses": [], "conversations": {}}`
	rec, _ := doRequest(t, s, http.MethodPost, "/memories/import", bytes.NewReader([]byte(backup)))
	require.Equal(t, http.StatusOK, rec.Code)

	photos := st.Photos()
	require.Len(t, photos, 1)
	assert.Equal(t, "fresh", photos[0].ID)
	assert.Empty(t, st.GetConversationForPhoto("stale"))
}

func TestMemoriesImport_RejectsMalformedBackup(t *testing.T) {
	s, _ := newTestServer(t)
	rec, resp := doRequest(t, s, http.MethodPost, "/memories/import", bytes.NewReader([]byte(`{"photos": []}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp.Error, "invalid backup file format")
}
