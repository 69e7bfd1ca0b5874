package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/iota-uz/people-sync/modules/people/domain/aggregates/identity"
	"github.com/iota-uz/people-sync/modules/people/infrastructure/persistence"
	"github.com/iota-uz/people-sync/modules/people/mapping"
	"github.com/iota-uz/people-sync/modules/people/presentation/controllers"
	"github.com/iota-uz/people-sync/modules/people/services"
	"github.com/iota-uz/people-sync/pkg/composables"
	"github.com/iota-uz/people-sync/pkg/eventbus"
	"github.com/iota-uz/people-sync/pkg/httpapi"
)

func newTestRouter(t *testing.T) (*persistence.InMemoryStore, *mux.Router) {
	t.Helper()

	store := persistence.NewInMemoryStore()
	mapper, err := mapping.NewMapper()
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	profileSvc := services.NewProfileService(
		store.Identities(), store.Profiles(), store.Employees(),
		mapper, eventbus.NewEventPublisher(logger),
		services.WithTxRunner(services.DirectTx),
	)
	importSvc := services.NewImportServiceWithTx(profileSvc, store.Employees(), mapper, services.DirectTx)

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := composables.WithLogger(r.Context(), logrus.NewEntry(logger))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	controllers.NewPeopleController(profileSvc, importSvc, 8<<20, 100, time.Minute).Register(router)
	return store, router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestExtractEndpoint(t *testing.T) {
	store, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/people/extract", map[string]any{
		"Official_Email": "asha@corp.example",
		"Full_Name":      "Asha Rao",
		"Job_Title":      "Engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		IdentityID uuid.UUID `json:"identity_id"`
		Profile    struct {
			FullName string `json:"full_name"`
			JobTitle string `json:"job_title"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEqual(t, uuid.Nil, resp.IdentityID)
	require.Equal(t, "Asha Rao", resp.Profile.FullName)
	require.Equal(t, "Engineer", resp.Profile.JobTitle)
	require.Equal(t, 1, store.ProfileCount())
}

func TestExtractEndpoint_IdentityHint(t *testing.T) {
	store, router := newTestRouter(t)

	ident, err := store.Identities().Create(context.Background(), identity.New("asha@corp.example", "Asha Rao"))
	require.NoError(t, err)

	// No email in the bag; the hint alone pins the target.
	rec := doJSON(t, router, http.MethodPost, "/api/people/extract?identity_id="+ident.ID().String(), map[string]any{
		"Job_Title": "Engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		IdentityID uuid.UUID `json:"identity_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, ident.ID(), resp.IdentityID)

	bad := doJSON(t, router, http.MethodPost, "/api/people/extract?identity_id=nope", map[string]any{
		"Job_Title": "Engineer",
	})
	require.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestExtractEndpoint_EmptyBag(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/people/extract", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var envelope httpapi.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, "PEOPLE_VALIDATION", envelope.Code)
}

func TestSaveEditedEndpoint(t *testing.T) {
	store, router := newTestRouter(t)

	ident, err := store.Identities().Create(context.Background(), identity.New("asha@corp.example", "Asha Rao"))
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPut, "/api/people/me", map[string]any{
		"identity_id": ident.ID(),
		"patch": map[string]any{
			"phone":     "555-0101",
			"job_title": "Senior Engineer",
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Profile struct {
			Phone    string `json:"phone"`
			JobTitle string `json:"job_title"`
		} `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "555-0101", resp.Profile.Phone)
	require.Equal(t, "Senior Engineer", resp.Profile.JobTitle)
}

func TestSaveEditedEndpoint_MissingIdentity(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/people/me", map[string]any{
		"patch": map[string]any{"phone": "555-0101"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveEditedEndpoint_InvalidEmail(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/api/people/me", map[string]any{
		"identity_id": uuid.New(),
		"patch":       map[string]any{"official_email": "not-an-email"},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	store, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/people/extract", map[string]any{
		"Official_Email": "asha@corp.example",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		IdentityID uuid.UUID `json:"identity_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	del := doJSON(t, router, http.MethodDelete, "/api/people/"+resp.IdentityID.String(), nil)
	require.Equal(t, http.StatusNoContent, del.Code)
	require.Equal(t, 0, store.ProfileCount())

	again := doJSON(t, router, http.MethodDelete, "/api/people/"+resp.IdentityID.String(), nil)
	require.Equal(t, http.StatusNotFound, again.Code)
}

func TestDeleteEndpoint_BadID(t *testing.T) {
	_, router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodDelete, "/api/people/not-a-uuid", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, cells := range rows {
		for j, value := range cells {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cell, value))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImportEndpoint(t *testing.T) {
	store, router := newTestRouter(t)

	workbook := buildWorkbook(t, [][]any{
		{"Employee Name", "Work Email", "Designation"},
		{"Asha Rao", "asha@corp.example", "Engineer"},
		{"No Email Here", "", ""},
	})

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "people.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/people/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "per-row failures still answer 200")

	var result services.BatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, 2, result.Total)
	require.Equal(t, 1, result.Successful)
	require.Equal(t, 1, result.Failed)
	require.Contains(t, result.Results[1].Error, "no email column matched")
	require.Equal(t, 1, store.ProfileCount())
}

func TestImportEndpoint_RejectsNonXlsx(t *testing.T) {
	_, router := newTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "people.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("a,b\n1,2\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/people/import", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
