package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"memorylens/memory"
)

// Dashboard routes backing the memories page: stats, summaries, search,
// retention pruning, and backup export/import. These read store snapshots and
// feed them through the pure aggregation layer.

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := memory.GetStats(s.store.Photos(), s.store.Conversations())
	writeData(w, map[string]interface{}{
		"stats":       stats,
		"storageUsed": memory.FormatStorageSize(stats.StorageUsed),
	}, "")
}

func (s *Server) handleSummaries(w http.ResponseWriter, r *http.Request) {
	summaries := memory.GetSummaries(s.store.Photos(), s.store.Conversations())
	writeData(w, map[string]interface{}{"summaries": summaries}, "")
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results := memory.Search(s.store.Conversations(), query)
	writeData(w, map[string]interface{}{"results": results}, "")
}

type pruneRequest struct {
	DaysToKeep int `json:"daysToKeep"`
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	req := pruneRequest{DaysToKeep: 30}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	if req.DaysToKeep <= 0 {
		writeError(w, http.StatusBadRequest, "daysToKeep must be positive")
		return
	}

	pruned := memory.ClearOld(s.store.Conversations(), req.DaysToKeep)
	s.store.ReplaceConversations(pruned)
	writeData(w, map[string]interface{}{"conversations": len(pruned)}, "Old conversations cleared")
}

// handleExport streams a backup artifact as a download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	backup := memory.Export(s.store.Photos(), s.store.Analyses(), s.store.Conversations())

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", backup.Filename()))
	if err := backup.Write(w); err != nil {
		s.logger.Error("backup export failed: %v", err)
	}
}

// handleImport restores photos, analyses, and conversations from a backup.
// Existing collections are replaced wholesale, matching a restore's intent.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	backup, err := memory.Import(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.store.ClearAllConversations()
	for _, p := range s.store.Photos() {
		s.store.RemovePhoto(p.ID)
	}
	for _, p := range backup.Photos {
		s.store.AddPhoto(p)
	}
	for _, a := range backup.Analyses {
		s.store.AddAnalysis(a)
	}
	s.store.ReplaceConversations(backup.Conversations)

	s.logger.Info("backup imported: %d photos, %d analyses, %d threads",
		len(backup.Photos), len(backup.Analyses), len(backup.Conversations))
	writeData(w, map[string]interface{}{
		"photos":        len(backup.Photos),
		"analyses":      len(backup.Analyses),
		"conversations": len(backup.Conversations),
	}, "Backup imported successfully")
}
