package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/profile"
	"github.com/iota-uz/people-sync/modules/people/infrastructure/xlsximport"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/modules/people/services"
	"github.com/iota-uz/people-sync/pkg/composables"
	"github.com/iota-uz/people-sync/pkg/httpapi"
)

type PeopleController struct {
	profiles     *services.ProfileService
	imports      *services.ImportService
	maxUpload    int64
	maxRows      int
	batchTimeout time.Duration
}

func NewPeopleController(
	profiles *services.ProfileService,
	imports *services.ImportService,
	maxUpload int64,
	maxRows int,
	batchTimeout time.Duration,
) *PeopleController {
	return &PeopleController{
		profiles:     profiles,
		imports:      imports,
		maxUpload:    maxUpload,
		maxRows:      maxRows,
		batchTimeout: batchTimeout,
	}
}

func (c *PeopleController) Register(r *mux.Router) {
	api := r.PathPrefix("/api/people").Subrouter()
	api.HandleFunc("/import", c.Import).Methods(http.MethodPost)
	api.HandleFunc("/extract", c.Extract).Methods(http.MethodPost)
	api.HandleFunc("/me", c.SaveEdited).Methods(http.MethodPut)
	api.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

// Import accepts a multipart .xlsx upload and answers 200 with per-row
// outcomes. Only an unusable file itself is a request error.
func (c *PeopleController) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(c.maxUpload); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "failed to parse multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "missing 'file' upload", nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if !strings.HasSuffix(header.Filename, ".xlsx") {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "only .xlsx files are accepted", nil)
		return
	}

	records, err := xlsximport.ReadRecords(file)
	if err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("rejected import upload")
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "workbook has no usable rows", nil)
		return
	}
	if c.maxRows > 0 && len(records) > c.maxRows {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION",
			fmt.Sprintf("workbook has %d rows, limit is %d", len(records), c.maxRows), nil)
		return
	}

	ctx := r.Context()
	if c.batchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.batchTimeout)
		defer cancel()
	}

	// Bulk upload is an operator surface; rows may create identities.
	_ = httpapi.WriteJSON(w, http.StatusOK, c.imports.ImportBatch(ctx, records, true))
}

// Extract accepts a document-extraction field bag and merges it into the
// matched or newly created person. An optional identity_id query parameter
// pins the target identity instead of matching by email.
func (c *PeopleController) Extract(w http.ResponseWriter, r *http.Request) {
	var bag mapping.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&bag); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "invalid JSON body", nil)
		return
	}
	if len(bag) == 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "empty field bag", nil)
		return
	}

	var hinted *uuid.UUID
	if raw := r.URL.Query().Get("identity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "identity_id is not a valid UUID", nil)
			return
		}
		hinted = &id
	}

	merged, ident, err := c.profiles.ExtractAndSave(r.Context(), bag, hinted, true)
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &profileResponse{
		IdentityID: ident.ID(),
		Profile:    merged,
	})
}

type saveEditedRequest struct {
	IdentityID uuid.UUID `json:"identity_id"`
	Patch      PatchDTO  `json:"patch"`
}

type profileResponse struct {
	IdentityID uuid.UUID       `json:"identity_id"`
	Profile    profile.Profile `json:"profile"`
}

// SaveEdited merges a manually edited form submission for a known identity.
func (c *PeopleController) SaveEdited(w http.ResponseWriter, r *http.Request) {
	var req saveEditedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "invalid JSON body", nil)
		return
	}
	if req.IdentityID == uuid.Nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "identity_id is required", nil)
		return
	}
	if fieldErrs, ok := req.Patch.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "invalid patch", fieldErrs)
		return
	}

	merged, err := c.profiles.SaveEdited(r.Context(), req.IdentityID, req.Patch.ToPatch())
	if err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}

	_ = httpapi.WriteJSON(w, http.StatusOK, &profileResponse{
		IdentityID: req.IdentityID,
		Profile:    merged,
	})
}

// Delete removes a person and everything keyed to them.
func (c *PeopleController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "PEOPLE_VALIDATION", "invalid identity id", nil)
		return
	}

	if err := c.profiles.Delete(r.Context(), id); err != nil {
		_ = httpapi.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
