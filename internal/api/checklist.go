package api

import (
	"net/http"

	"github.com/starford/raido/internal/models"
)

func taskAndItemID(r *http.Request) (taskID, itemID int64, err error) {
	if taskID, err = pathID(r, "id"); err != nil {
		return 0, 0, err
	}
	if itemID, err = pathID(r, "itemID"); err != nil {
		return 0, 0, err
	}
	return taskID, itemID, nil
}

// ListChecklist handles GET /api/tasks/{id}/checklist.
//
//	@Summary		List a task's checklist in order
//	@Tags			checklist
//	@Produce		json
//	@Param			id	path		int	true	"Task ID"
//	@Success		200	{object}	ChecklistResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/checklist [get]
func (h *Handler) ListChecklist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "list checklist", err)
		return
	}
	items, err := h.svc.ListChecklist(r.Context(), id)
	if err != nil {
		writeError(w, r, "list checklist", err)
		return
	}
	writeJSON(w, http.StatusOK, ChecklistResponse{Items: items})
}

// CreateChecklistItem handles POST /api/tasks/{id}/checklist.
//
//	@Summary		Add a checklist item; order_no defaults to the end
//	@Tags			checklist
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Task ID"
//	@Param			body	body		models.ChecklistItemSpec	true	"Item to add"
//	@Success		201		{object}	models.ChecklistItem
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/checklist [post]
func (h *Handler) CreateChecklistItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, "create checklist item", err)
		return
	}
	var req models.ChecklistItemSpec
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "create checklist item", err)
		return
	}
	it, err := h.svc.CreateChecklistItem(r.Context(), id, req)
	if err != nil {
		writeError(w, r, "create checklist item", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

// UpdateChecklistItem handles PATCH /api/tasks/{id}/checklist/{itemID}.
//
//	@Summary		Edit a checklist item
//	@Tags			checklist
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Task ID"
//	@Param			itemID	path		int							true	"Checklist item ID"
//	@Param			body	body		models.ChecklistItemPatch	true	"Fields to change"
//	@Success		200		{object}	models.ChecklistItem
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/checklist/{itemID} [patch]
func (h *Handler) UpdateChecklistItem(w http.ResponseWriter, r *http.Request) {
	taskID, itemID, err := taskAndItemID(r)
	if err != nil {
		writeError(w, r, "update checklist item", err)
		return
	}
	var req models.ChecklistItemPatch
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, "update checklist item", err)
		return
	}
	it, err := h.svc.UpdateChecklistItem(r.Context(), taskID, itemID, req)
	if err != nil {
		writeError(w, r, "update checklist item", err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// DeleteChecklistItem handles DELETE /api/tasks/{id}/checklist/{itemID}.
//
//	@Summary		Delete a checklist item that was never extracted
//	@Tags			checklist
//	@Param			id		path	int	true	"Task ID"
//	@Param			itemID	path	int	true	"Checklist item ID"
//	@Success		204		"Item deleted"
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/checklist/{itemID} [delete]
func (h *Handler) DeleteChecklistItem(w http.ResponseWriter, r *http.Request) {
	taskID, itemID, err := taskAndItemID(r)
	if err != nil {
		writeError(w, r, "delete checklist item", err)
		return
	}
	if err := h.svc.DeleteChecklistItem(r.Context(), taskID, itemID); err != nil {
		writeError(w, r, "delete checklist item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExtractChecklistItem handles POST /api/tasks/{id}/checklist/{itemID}/extract.
//
//	@Summary		Promote a checklist item into its own task
//	@Tags			checklist
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int						true	"Task ID"
//	@Param			itemID	path		int						true	"Checklist item ID"
//	@Param			body	body		models.ExtractOverrides	false	"Fields overriding the inherited defaults"
//	@Success		201		{object}	models.ExtractResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tasks/{id}/checklist/{itemID}/extract [post]
func (h *Handler) ExtractChecklistItem(w http.ResponseWriter, r *http.Request) {
	taskID, itemID, err := taskAndItemID(r)
	if err != nil {
		writeError(w, r, "extract checklist item", err)
		return
	}
	var req models.ExtractOverrides
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, "extract checklist item", err)
		return
	}
	res, err := h.svc.Extract(r.Context(), taskID, itemID, req)
	if err != nil {
		writeError(w, r, "extract checklist item", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
