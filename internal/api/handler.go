package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/tripfolio/tripfolio-api/internal/apperr"
	"github.com/tripfolio/tripfolio-api/internal/model"
	"github.com/tripfolio/tripfolio-api/internal/service"

	"github.com/gorilla/mux"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new handler instance
func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{service: svc}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: caller errors
// to 400, storage failures to 500, provider failures to 502.
func writeError(w http.ResponseWriter, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		log.Printf("Internal error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	switch kind {
	case apperr.KindInvalidArgument:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case apperr.KindUpstreamGateway:
		log.Printf("Upstream gateway error: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("Storage error: %v", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListEntities handles GET /api/v1/entities
func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")

	var parentID *int64
	if parentStr := r.URL.Query().Get("parent_id"); parentStr != "" {
		parent, err := strconv.ParseInt(parentStr, 10, 64)
		if err != nil {
			http.Error(w, "invalid parent_id parameter", http.StatusBadRequest)
			return
		}
		parentID = &parent
	}

	entities, err := h.service.ListEntities(r.Context(), kind, parentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entities == nil {
		entities = []model.TravelEntity{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entities": entities,
		"count":    len(entities),
	})
}

// GetEntity handles GET /api/v1/entities/{id}
func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	entity, err := h.service.GetEntity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if entity == nil {
		http.Error(w, "entity not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, entity)
}

// CreateEntity handles POST /api/v1/entities
func (h *Handler) CreateEntity(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entity, err := h.service.CreateEntity(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entity)
}

// UpdateEntity handles PUT /api/v1/entities/{id}
func (h *Handler) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	var req model.UpdateEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateEntity(r.Context(), id, req); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "entity updated"})
}

// DeleteEntity handles DELETE /api/v1/entities/{id}
func (h *Handler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteEntity(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "entity deleted"})
}

// RecordVisit handles PATCH /api/v1/entities/{id}/visit
func (h *Handler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	// Empty body means "visited now"
	var req model.VisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	visitedAt := time.Now()
	if req.VisitedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.VisitedAt)
		if err != nil {
			http.Error(w, "visited_at must be RFC 3339", http.StatusBadRequest)
			return
		}
		visitedAt = parsed
	}

	if err := h.service.RecordVisit(r.Context(), id, visitedAt); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "visit recorded"})
}

// ListPhotos handles GET /api/v1/{entityType}/{id}/photos
func (h *Handler) ListPhotos(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	response, err := h.service.ListPhotos(r.Context(), vars["entityType"], id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// AddPhotos handles POST /api/v1/{entityType}/{id}/photos
func (h *Handler) AddPhotos(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	var req model.BulkPhotosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ownerID := UserIDFromContext(r.Context())
	if err := h.service.AddPhotos(r.Context(), vars["entityType"], id, ownerID, req.Photos); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "photos added"})
}

// RemovePhotos handles DELETE /api/v1/{entityType}/{id}/photos
func (h *Handler) RemovePhotos(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	var req model.BulkPhotosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.RemovePhotos(r.Context(), vars["entityType"], id, req.Photos); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "photos removed"})
}

// ReconcilePhotos handles PUT /api/v1/{entityType}/{id}/photos
func (h *Handler) ReconcilePhotos(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	var req model.BulkPhotosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ownerID := UserIDFromContext(r.Context())
	if err := h.service.ReconcilePhotos(r.Context(), vars["entityType"], id, ownerID, req.Photos); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "photos reconciled"})
}

// SearchPhotos handles GET /api/v1/photos/search
func (h *Handler) SearchPhotos(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("tag")
	if query == "" {
		query = r.URL.Query().Get("folder")
	}
	if query == "" {
		http.Error(w, "query parameter 'tag' or 'folder' is required", http.StatusBadRequest)
		return
	}

	maxResults := 0
	if maxStr := r.URL.Query().Get("max"); maxStr != "" {
		var err error
		maxResults, err = strconv.Atoi(maxStr)
		if err != nil || maxResults < 0 {
			http.Error(w, "invalid max parameter", http.StatusBadRequest)
			return
		}
	}

	response, err := h.service.SearchPhotos(r.Context(), query, maxResults, r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// CreateCheckIn handles POST /api/v1/checkins
func (h *Handler) CreateCheckIn(w http.ResponseWriter, r *http.Request) {
	var req model.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	userID := UserIDFromContext(r.Context())
	checkIn, err := h.service.CreateCheckIn(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, checkIn)
}

// ListCheckIns handles GET /api/v1/entities/{id}/checkins
func (h *Handler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		http.Error(w, "invalid entity id", http.StatusBadRequest)
		return
	}

	checkIns, err := h.service.ListCheckIns(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if checkIns == nil {
		checkIns = []model.CheckIn{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"checkins": checkIns,
		"count":    len(checkIns),
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
