package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apiContext "authbase/internal/api/context"
	"authbase/internal/api/middleware"
	"authbase/internal/pkg/errors"
	"authbase/internal/platform/cache"
	"authbase/internal/platform/models"
	"authbase/internal/platform/repositories"
)

type OrgHandler struct {
	orgRepo *repositories.OrganizationRepository
	cache   cache.Store
}

func NewOrgHandler(orgRepo *repositories.OrganizationRepository, cacheStore cache.Store) *OrgHandler {
	return &OrgHandler{orgRepo: orgRepo, cache: cacheStore}
}

type CreateOrgRequest struct {
	App string `json:"app"`
}

func (h *OrgHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := r.Context().Value(apiContext.Developer).(*middleware.DeveloperIdentity)

	var req CreateOrgRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.App == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "App name is required", nil)
		return
	}

	org := &models.Organization{
		AppID:     "org_" + uuid.NewString(),
		App:       req.App,
		CreatedAt: time.Now().Unix(),
	}

	tx, err := h.orgRepo.BeginTx()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer tx.Rollback()

	if err := h.orgRepo.CreateTx(tx, org); err != nil {
		if repositories.IsUniqueViolation(err) {
			errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Organization name already exists", nil)
			return
		}
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to create organization", nil)
		return
	}

	if err := h.orgRepo.LinkDeveloperTx(tx, identity.ID, org.AppID, "owner"); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to link organization", nil)
		return
	}

	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":      "Organization created successfully",
		"organization": map[string]string{"app": org.App, "app_id": org.AppID},
	})
}

type CreateOrgBatchRequest struct {
	Apps []string `json:"apps"`
}

type OrgBatchError struct {
	App   string `json:"app"`
	Error string `json:"error"`
}

// CreateBatch creates several organizations in one transaction with per-item
// error reporting. A failed item does not roll the survivors back: best-effort
// batch, not all-or-nothing.
func (h *OrgHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	identity := r.Context().Value(apiContext.Developer).(*middleware.DeveloperIdentity)

	var req CreateOrgBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if len(req.Apps) == 0 {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Array of app names is required", nil)
		return
	}

	tx, err := h.orgRepo.BeginTx()
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	defer tx.Rollback()

	var created []map[string]string
	var batchErrors []OrgBatchError

	for _, app := range req.Apps {
		if app == "" {
			batchErrors = append(batchErrors, OrgBatchError{App: app, Error: "App name is required"})
			continue
		}

		org := &models.Organization{
			AppID:     "org_" + uuid.NewString(),
			App:       app,
			CreatedAt: time.Now().Unix(),
		}

		if err := h.orgRepo.CreateTx(tx, org); err != nil {
			if repositories.IsUniqueViolation(err) {
				batchErrors = append(batchErrors, OrgBatchError{App: app, Error: "Organization name already exists"})
			} else {
				batchErrors = append(batchErrors, OrgBatchError{App: app, Error: err.Error()})
			}
			continue
		}

		if err := h.orgRepo.LinkDeveloperTx(tx, identity.ID, org.AppID, "owner"); err != nil {
			batchErrors = append(batchErrors, OrgBatchError{App: app, Error: err.Error()})
			continue
		}

		created = append(created, map[string]string{"app": org.App, "app_id": org.AppID})
	}

	if err := tx.Commit(); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if len(batchErrors) > 0 {
		w.WriteHeader(http.StatusMultiStatus)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message":               "Batch organization creation completed with some errors",
			"created_organizations": created,
			"errors":                batchErrors,
		})
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":               "All organizations created successfully",
		"created_organizations": created,
	})
}

// orgProjection is the cached shape for organization:app_id lookups.
type orgProjection struct {
	AppID string `json:"app_id"`
	App   string `json:"app"`
}

func (h *OrgHandler) Validate(w http.ResponseWriter, r *http.Request) {
	identity := r.Context().Value(apiContext.Developer).(*middleware.DeveloperIdentity)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	appID := params.ByName("app_id")

	if appID == "" {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Organization ID is required", nil)
		return
	}

	linked, err := h.orgRepo.IsLinked(identity.ID, appID)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if !linked {
		errors.WriteError(w, http.StatusForbidden, errors.ErrCodeForbidden, "Organization is not linked to this developer", nil)
		return
	}

	var cached orgProjection
	cacheKey := cache.Key("organization", appID)
	if !h.cache.Get(r.Context(), cacheKey, &cached) {
		org, err := h.orgRepo.GetByAppID(appID)
		if err != nil {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
			return
		}
		if org == nil {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Organization not found", nil)
			return
		}
		h.cache.Set(r.Context(), cacheKey, orgProjection{AppID: org.AppID, App: org.App})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "Valid organization ID",
	})
}
