package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/omarica/internal/model"
	"github.com/erazemk/omarica/internal/store"
)

// CategoriesHandler handles category CRUD endpoints.
type CategoriesHandler struct {
	DB *sql.DB
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	categories, err := store.ListCategories(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	category, err := store.CreateCategory(r.Context(), h.DB, claims.UserID, req.Name, req.Description)
	if err != nil {
		storeError(w, err, "failed to create category")
		return
	}

	jsonResponse(w, http.StatusCreated, category)
}

// Get handles GET /api/categories/{id}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get category")
		return
	}
	if category == nil || category.UserID != claims.UserID {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}

	jsonResponse(w, http.StatusOK, category)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateCategory(r.Context(), h.DB, id, claims.UserID, req.Name, req.Description); err != nil {
		storeError(w, err, "failed to update category")
		return
	}

	category, _ := store.GetCategory(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, category)
}

// Delete handles DELETE /api/categories/{id}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := store.DeleteCategory(r.Context(), h.DB, id, claims.UserID); err != nil {
		storeError(w, err, "failed to delete category")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
