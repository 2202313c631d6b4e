package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/omarica/internal/exchange"
	"github.com/erazemk/omarica/internal/model"
	"github.com/erazemk/omarica/internal/store"
)

// ExchangeHandler handles export and import endpoints.
type ExchangeHandler struct {
	DB *sql.DB
}

type importRequest struct {
	UserID int64              `json:"userId"`
	Data   model.ExchangeData `json:"data"`
}

// Export handles GET /api/export. Query flags lockers, categories and
// items select the entity classes; with no flags everything is exported.
func (h *ExchangeHandler) Export(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	query := r.URL.Query()
	sel := exchange.Selection{
		Lockers:    query.Get("lockers") == "true",
		Categories: query.Get("categories") == "true",
		Items:      query.Get("items") == "true",
	}
	if !sel.Lockers && !sel.Categories && !sel.Items {
		sel = exchange.Selection{Lockers: true, Categories: true, Items: true}
	}

	doc, err := exchange.Export(r.Context(), h.DB, claims.UserID, sel)
	if err != nil {
		storeError(w, err, "failed to export data")
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="omarica-export.json"`)
	jsonResponse(w, http.StatusOK, doc)
}

// Import handles POST /api/import. The optional userId field targets a
// different account and is admin-only; by default the data is merged into
// the caller's own account.
func (h *ExchangeHandler) Import(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := claims.UserID
	if req.UserID != 0 && req.UserID != claims.UserID {
		if claims.Role != model.RoleAdmin {
			jsonError(w, http.StatusForbidden, "importing into another account requires admin")
			return
		}
		target, err := store.GetUser(r.Context(), h.DB, req.UserID)
		if err != nil {
			storeError(w, err, "failed to check target user")
			return
		}
		if target == nil || target.DeletedAt != nil {
			jsonError(w, http.StatusNotFound, "target user not found")
			return
		}
		userID = req.UserID
	}

	if len(req.Data.Lockers) == 0 && len(req.Data.Categories) == 0 && len(req.Data.Items) == 0 {
		jsonError(w, http.StatusBadRequest, "nothing to import")
		return
	}

	summary, err := exchange.Import(r.Context(), h.DB, userID, req.Data)
	if err != nil {
		storeError(w, err, "import failed")
		return
	}

	slog.Info("import finished",
		"user", claims.Username,
		"target_user_id", userID,
		"lockers_created", summary.LockersCreated,
		"items_created", summary.ItemsCreated,
		"items_updated", summary.ItemsUpdated,
		"items_skipped", summary.ItemsSkipped,
	)
	jsonResponse(w, http.StatusOK, summary)
}
