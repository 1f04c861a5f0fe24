package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/seo-dashboard/internal/types"
)

// handleRefresh triggers a refresh for one tenant resource. force=true in
// the query bypasses the freshness check (never the in-flight dedup); the
// surrounding dashboard API has already authorized forced refreshes before
// the request reaches this server.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantID := vars["id"]
	resource := vars["resource"]

	if tenantID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "tenant id is required", nil)
		return
	}
	if !types.ValidResourceType(resource) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "unknown resource type: "+resource, nil)
		return
	}

	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "force must be a boolean", nil)
			return
		}
		force = parsed
	}

	result, err := s.trigger.Refresh(r.Context(), tenantID, types.ResourceType(resource), force)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleRefreshStatus returns the last stored refresh summary for a resource
func (s *Server) handleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	tenantID := vars["id"]
	resource := vars["resource"]

	if !types.ValidResourceType(resource) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "unknown resource type: "+resource, nil)
		return
	}

	key := types.NewResourceKey(tenantID, types.ResourceType(resource))
	summary, found, err := s.summaries.GetSummary(r.Context(), key)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "no refresh recorded for "+key.String(), nil)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}
