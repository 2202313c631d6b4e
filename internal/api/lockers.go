package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/erazemk/omarica/internal/model"
	"github.com/erazemk/omarica/internal/qr"
	"github.com/erazemk/omarica/internal/store"
)

// LockersHandler handles locker CRUD and bulk-delete endpoints.
type LockersHandler struct {
	DB *sql.DB
}

type createLockerRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateLockerRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type bulkDeleteLockersRequest struct {
	IDs            []int64 `json:"ids"`
	Mode           string  `json:"mode"`
	TargetLockerID int64   `json:"target_locker_id"`
}

// List handles GET /api/lockers.
func (h *LockersHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	lockers, err := store.ListLockers(r.Context(), h.DB, claims.UserID)
	if err != nil {
		storeError(w, err, "failed to list lockers")
		return
	}
	if lockers == nil {
		lockers = []model.Locker{}
	}
	jsonResponse(w, http.StatusOK, lockers)
}

// Create handles POST /api/lockers. A caller-supplied code is validated
// and probed for global uniqueness; without one a fresh code is generated.
// A concurrent creation racing on the same code loses on the UNIQUE
// constraint and surfaces as a conflict the caller can retry.
func (h *LockersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req createLockerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	code := req.Code
	if code == "" {
		generated, err := store.GenerateCode(r.Context(), h.DB)
		if err != nil {
			storeError(w, err, "failed to generate code")
			return
		}
		code = generated
	} else {
		if !model.ValidCode(code) {
			jsonError(w, http.StatusBadRequest, "code must be one uppercase letter followed by three digits")
			return
		}
		used, err := store.CodeInUse(r.Context(), h.DB, code)
		if err != nil {
			storeError(w, err, "failed to check code")
			return
		}
		if used {
			jsonError(w, http.StatusConflict, "code already in use")
			return
		}
	}

	png, err := qr.Encode(code)
	if err != nil {
		jsonError(w, http.StatusBadGateway, "qr image generation failed")
		return
	}

	locker, err := store.CreateLocker(r.Context(), h.DB, claims.UserID, code, req.Name, req.Description, uuid.NewString(), png)
	if err != nil {
		storeError(w, err, "failed to create locker")
		return
	}

	slog.Info("locker created", "user", claims.Username, "code", locker.Code)
	jsonResponse(w, http.StatusCreated, locker)
}

// Get handles GET /api/lockers/{id}.
func (h *LockersHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	locker, err := store.GetLocker(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, err, "failed to get locker")
		return
	}
	if locker == nil || locker.UserID != claims.UserID {
		jsonError(w, http.StatusNotFound, "locker not found")
		return
	}

	items, err := store.ListItems(r.Context(), h.DB, claims.UserID, store.ItemFilter{LockerID: id})
	if err != nil {
		storeError(w, err, "failed to list locker items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"locker": locker,
		"items":  items,
	})
}

// Update handles PUT /api/lockers/{id}. The code is immutable.
func (h *LockersHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	var req updateLockerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateLocker(r.Context(), h.DB, id, claims.UserID, req.Name, req.Description); err != nil {
		storeError(w, err, "failed to update locker")
		return
	}

	locker, _ := store.GetLocker(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, locker)
}

// Delete handles DELETE /api/lockers/{id}. For non-empty lockers the
// caller must pass mode=move&target=<id> or mode=delete.
func (h *LockersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid locker id")
		return
	}

	mode := r.URL.Query().Get("mode")
	target, _ := strconv.ParseInt(r.URL.Query().Get("target"), 10, 64)

	if err := store.BulkDeleteLockers(r.Context(), h.DB, claims.UserID, []int64{id}, mode, target); err != nil {
		storeError(w, err, "failed to delete locker")
		return
	}

	slog.Info("locker deleted", "user", claims.Username, "locker_id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "locker deleted"})
}

// BulkDelete handles POST /api/lockers/bulk-delete.
func (h *LockersHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	var req bulkDeleteLockersRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "locker ids required")
		return
	}
	if req.Mode != "" && req.Mode != store.LockerDeleteMove && req.Mode != store.LockerDeleteCascade {
		jsonError(w, http.StatusBadRequest, "invalid mode")
		return
	}

	if err := store.BulkDeleteLockers(r.Context(), h.DB, claims.UserID, req.IDs, req.Mode, req.TargetLockerID); err != nil {
		storeError(w, err, "failed to delete lockers")
		return
	}

	slog.Info("lockers bulk deleted", "user", claims.Username, "count", len(req.IDs), "mode", req.Mode)
	jsonResponse(w, http.StatusOK, map[string]any{"message": "lockers deleted", "count": len(req.IDs)})
}

// GetQR handles GET /api/qr/{key}: the locker's QR image.
func (h *LockersHandler) GetQR(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		jsonError(w, http.StatusBadRequest, "invalid qr key")
		return
	}

	png, err := store.GetQRImage(r.Context(), h.DB, key)
	if err != nil {
		storeError(w, err, "failed to get qr image")
		return
	}
	if png == nil {
		jsonError(w, http.StatusNotFound, "qr image not found")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(png)
}
