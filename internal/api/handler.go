package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"resume-skills/internal/cv"
	"resume-skills/internal/storage"

	"go.uber.org/zap"
)

type API struct {
	extractor      *cv.Extractor
	vocabulary     *cv.VocabularyStore
	history        *storage.DB // nil when the history store is disabled
	maxUploadBytes int64
}

func NewAPI(extractor *cv.Extractor, vocabulary *cv.VocabularyStore, history *storage.DB, maxUploadBytes int64) *API {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 10 << 20
	}
	return &API{
		extractor:      extractor,
		vocabulary:     vocabulary,
		history:        history,
		maxUploadBytes: maxUploadBytes,
	}
}

// ReloadVocabularyHandler re-reads the skill vocabulary
// @Summary Reload skill vocabulary
// @Description Re-read the vocabulary file and swap the cached snapshot
// @Tags vocabulary
// @Produce json
// @Success 200 {object} map[string]int
// @Failure 500 {object} ErrorResponse
// @Router /api/vocabulary/reload [post]
func (a *API) ReloadVocabularyHandler(w http.ResponseWriter, r *http.Request) {
	vocab, err := a.vocabulary.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"entries": len(vocab)})
}

// RecentExtractionsHandler lists the latest extractions
// @Summary Recent extractions
// @Description List recently completed extractions, newest first
// @Tags history
// @Produce json
// @Param limit query int false "Limit results" default(20)
// @Success 200 {array} storage.ExtractionRecord
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/extractions [get]
func (a *API) RecentExtractionsHandler(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "extraction history is disabled"})
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	records, err := a.history.RecentExtractions(r.Context(), limit)
	if err != nil {
		zap.L().Error("query extractions", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "database error"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode JSON response", zap.Error(err))
	}
}
