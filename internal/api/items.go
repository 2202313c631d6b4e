package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/omarica/internal/model"
	"github.com/erazemk/omarica/internal/store"
)

// ItemsHandler handles item CRUD and bulk endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

type itemRequest struct {
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
	LockerID    int64  `json:"locker_id"`
}

type bulkDeleteItemsRequest struct {
	IDs []int64 `json:"ids"`
}

type bulkMoveItemsRequest struct {
	IDs              []int64 `json:"ids"`
	SourceCategoryID int64   `json:"source_category_id"`
	SourceLockerID   int64   `json:"source_locker_id"`
	CategoryID       int64   `json:"category_id"`
	LockerID         int64   `json:"locker_id"`
}

// List handles GET /api/items with optional categoryId, lockerId and q
// query filters.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var filter store.ItemFilter
	filter.CategoryID, _ = strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64)
	filter.LockerID, _ = strconv.ParseInt(r.URL.Query().Get("lockerId"), 10, 64)
	filter.Search = r.URL.Query().Get("q")

	items, err := store.ListItems(r.Context(), h.DB, claims.UserID, filter)
	if err != nil {
		storeError(w, err, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

func (h *ItemsHandler) validateItemRequest(req *itemRequest) string {
	switch {
	case req.Name == "":
		return "name required"
	case req.Quantity < 0:
		return "quantity must not be negative"
	case req.CategoryID == 0:
		return "category_id required"
	case req.LockerID == 0:
		return "locker_id required"
	}
	return ""
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := h.validateItemRequest(&req); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, claims.UserID, req.CategoryID, req.LockerID, req.Name, req.Quantity, req.Description)
	if err != nil {
		storeError(w, err, "failed to create item")
		return
	}

	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get item")
		return
	}
	if item == nil || item.UserID != claims.UserID {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := h.validateItemRequest(&req); msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, claims.UserID, req.CategoryID, req.LockerID, req.Name, req.Quantity, req.Description); err != nil {
		storeError(w, err, "failed to update item")
		return
	}

	item, _ := store.GetItem(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id, claims.UserID); err != nil {
		storeError(w, err, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// BulkDelete handles POST /api/items/bulk-delete. All ids must belong to
// the caller or nothing is deleted.
func (h *ItemsHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req bulkDeleteItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "item ids required")
		return
	}

	if err := store.BulkDeleteItems(r.Context(), h.DB, claims.UserID, req.IDs); err != nil {
		storeError(w, err, "failed to delete items")
		return
	}

	slog.Info("items bulk deleted", "user", claims.Username, "count", len(req.IDs))
	jsonResponse(w, http.StatusOK, map[string]any{"message": "items deleted", "count": len(req.IDs)})
}

// BulkMove handles POST /api/items/bulk-move. Items are selected either
// by explicit ids or by a source category/locker filter.
func (h *ItemsHandler) BulkMove(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req bulkMoveItemsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 && req.SourceCategoryID == 0 && req.SourceLockerID == 0 {
		jsonError(w, http.StatusBadRequest, "item ids or a source category_id/locker_id required")
		return
	}
	if req.CategoryID == 0 && req.LockerID == 0 {
		jsonError(w, http.StatusBadRequest, "destination category_id or locker_id required")
		return
	}

	count := len(req.IDs)
	if len(req.IDs) > 0 {
		if err := store.BulkMoveItems(r.Context(), h.DB, claims.UserID, req.IDs, req.CategoryID, req.LockerID); err != nil {
			storeError(w, err, "failed to move items")
			return
		}
	} else {
		moved, err := store.BulkMoveItemsFrom(r.Context(), h.DB, claims.UserID,
			req.SourceCategoryID, req.SourceLockerID, req.CategoryID, req.LockerID)
		if err != nil {
			storeError(w, err, "failed to move items")
			return
		}
		count = moved
	}

	slog.Info("items bulk moved", "user", claims.Username, "count", count)
	jsonResponse(w, http.StatusOK, map[string]any{"message": "items moved", "count": count})
}
