package api

import (
	"net/http"
	"strconv"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

// ListCaptures handles GET /api/captures.
//
//	@Summary		List captures, newest first
//	@Tags			captures
//	@Produce		json
//	@Param			is_resolved	query		bool	false	"Filter by resolution"
//	@Success		200			{object}	CaptureListResponse
//	@Failure		400			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures [get]
func (h *Handler) ListCaptures(w http.ResponseWriter, r *http.Request) {
	var resolved *bool
	if raw := r.URL.Query().Get("is_resolved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, "list captures", apperr.Validation("is_resolved %q is not a boolean", raw))
			return
		}
		resolved = &v
	}
	captures, err := h.svc.ListCaptures(r.Context(), resolved)
	if err != nil {
		writeError(w, r, "list captures", err)
		return
	}
	writeJSON(w, http.StatusOK, CaptureListResponse{Captures: captures})
}

// CreateCapture handles POST /api/captures.
//
//	@Summary		Capture a note into the inbox
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.CaptureSpec	true	"Capture to create"
//	@Success		201		{object}	models.CaptureItem
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures [post]
func (h *Handler) CreateCapture(w http.ResponseWriter, r *http.Request) {
	var req models.CaptureSpec
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "create capture", err)
		return
	}
	c, err := h.svc.CreateCapture(r.Context(), req)
	if err != nil {
		writeError(w, r, "create capture", err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCapture handles PATCH /api/captures/{id}.
//
//	@Summary		Edit, link or resolve a capture
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Capture ID"
//	@Param			body	body		models.CapturePatch	true	"Fields to change"
//	@Success		200		{object}	models.CaptureItem
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/{id} [patch]
func (h *Handler) UpdateCapture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "update capture", err)
		return
	}
	var req models.CapturePatch
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "update capture", err)
		return
	}
	c, err := h.svc.UpdateCapture(r.Context(), id, req)
	if err != nil {
		writeError(w, r, "update capture", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCapture handles DELETE /api/captures/{id}.
//
//	@Summary		Delete a capture
//	@Tags			captures
//	@Param			id	path	int	true	"Capture ID"
//	@Success		204	"Capture deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/{id} [delete]
func (h *Handler) DeleteCapture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "delete capture", err)
		return
	}
	if err := h.svc.DeleteCapture(r.Context(), id); err != nil {
		writeError(w, r, "delete capture", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PromoteCapture handles POST /api/captures/{id}/promote.
//
//	@Summary		Turn a capture into a task with its checklist
//	@Tags			captures
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Capture ID"
//	@Param			body	body		models.PromoteRequest	false	"Task fields overriding the note"
//	@Success		201		{object}	models.PromoteResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/captures/{id}/promote [post]
func (h *Handler) PromoteCapture(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "promote capture", err)
		return
	}
	var req models.PromoteRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, "promote capture", err)
		return
	}
	res, err := h.svc.PromoteCapture(r.Context(), id, req)
	if err != nil {
		writeError(w, r, "promote capture", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
