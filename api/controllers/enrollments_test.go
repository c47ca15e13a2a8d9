package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bolajoy/bolajoy-backend/internal/enrollments"
	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
	"github.com/bolajoy/bolajoy-backend/pkg/pagination"
)

type stubEnrollmentsService struct {
	submitFn        func(ctx context.Context, input enrollments.SubmitInput) (*models.Application, error)
	getFn           func(ctx context.Context, ref string) (*models.Application, error)
	listFn          func(ctx context.Context, filter enrollments.ListFilter) (*enrollments.ListResult, error)
	updateFn        func(ctx context.Context, ref string, input enrollments.UpdateInput) (*models.Application, error)
	transitionFn    func(ctx context.Context, input enrollments.TransitionInput) (*models.Application, error)
	statusByPhoneFn func(ctx context.Context, phone string) ([]models.StatusSummary, error)
	softDeleteFn    func(ctx context.Context, ref string) error
}

func (s *stubEnrollmentsService) Submit(ctx context.Context, input enrollments.SubmitInput) (*models.Application, error) {
	return s.submitFn(ctx, input)
}

func (s *stubEnrollmentsService) Get(ctx context.Context, ref string) (*models.Application, error) {
	return s.getFn(ctx, ref)
}

func (s *stubEnrollmentsService) List(ctx context.Context, filter enrollments.ListFilter) (*enrollments.ListResult, error) {
	return s.listFn(ctx, filter)
}

func (s *stubEnrollmentsService) Update(ctx context.Context, ref string, input enrollments.UpdateInput) (*models.Application, error) {
	return s.updateFn(ctx, ref, input)
}

func (s *stubEnrollmentsService) Transition(ctx context.Context, input enrollments.TransitionInput) (*models.Application, error) {
	return s.transitionFn(ctx, input)
}

func (s *stubEnrollmentsService) StatusByPhone(ctx context.Context, phone string) ([]models.StatusSummary, error) {
	return s.statusByPhoneFn(ctx, phone)
}

func (s *stubEnrollmentsService) SoftDelete(ctx context.Context, ref string) error {
	return s.softDeleteFn(ctx, ref)
}

func sampleApplication() *models.Application {
	return &models.Application{
		ID:          uuid.New(),
		ChildName:   "Ali Valiyev",
		ParentName:  "Vali Aliyev",
		ParentPhone: "+998901234567",
		ParentEmail: "vali@example.com",
		Status:      enums.ApplicationStatusPending,
		SubmittedAt: time.Now(),
	}
}

func TestEnrollmentSubmitReturns201(t *testing.T) {
	app := sampleApplication()
	svc := &stubEnrollmentsService{
		submitFn: func(ctx context.Context, input enrollments.SubmitInput) (*models.Application, error) {
			assert.Equal(t, "Ali Valiyev", input.ChildName)
			assert.True(t, input.ContractAccepted)
			return app, nil
		},
	}

	body := `{"childName":"Ali Valiyev","childBirthDate":"2021-05-01","parentName":"Vali Aliyev","parentPhone":"+998901234567","parentEmail":"vali@example.com","contractAccepted":true}`
	req := httptest.NewRequest(http.MethodPost, "/enrollments", strings.NewReader(body))
	w := httptest.NewRecorder()

	EnrollmentSubmit(svc, nil)(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var envelope struct {
		Data models.Application `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, app.ID, envelope.Data.ID)
	assert.Equal(t, enums.ApplicationStatusPending, envelope.Data.Status)
}

func TestEnrollmentSubmitRejectsBadBirthDate(t *testing.T) {
	svc := &stubEnrollmentsService{
		submitFn: func(ctx context.Context, input enrollments.SubmitInput) (*models.Application, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	body := `{"childName":"Ali Valiyev","childBirthDate":"01.05.2021","parentName":"Vali Aliyev","parentPhone":"+998901234567","parentEmail":"vali@example.com","contractAccepted":true}`
	req := httptest.NewRequest(http.MethodPost, "/enrollments", strings.NewReader(body))
	w := httptest.NewRecorder()

	EnrollmentSubmit(svc, nil)(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentSubmitSurfacesViolationList(t *testing.T) {
	svc := &stubEnrollmentsService{
		submitFn: func(ctx context.Context, input enrollments.SubmitInput) (*models.Application, error) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "application failed validation").
				WithDetails(map[string][]string{
					"childName":   {"must be between 2 and 100 characters"},
					"parentPhone": {"must be a valid +998 phone number"},
				})
		},
	}

	body := `{"childName":"A","childBirthDate":"2021-05-01","parentName":"Vali Aliyev","parentPhone":"123","parentEmail":"vali@example.com","contractAccepted":true}`
	req := httptest.NewRequest(http.MethodPost, "/enrollments", strings.NewReader(body))
	w := httptest.NewRecorder()

	EnrollmentSubmit(svc, nil)(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope struct {
		Error struct {
			Code    string              `json:"code"`
			Details map[string][]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, string(pkgerrors.CodeValidation), envelope.Error.Code)
	assert.Len(t, envelope.Error.Details, 2)
}

func TestEnrollmentListPassesFilter(t *testing.T) {
	svc := &stubEnrollmentsService{
		listFn: func(ctx context.Context, filter enrollments.ListFilter) (*enrollments.ListResult, error) {
			require.NotNil(t, filter.Status)
			assert.Equal(t, enums.ApplicationStatusPending, *filter.Status)
			assert.Equal(t, 2, filter.Params.Page)
			return &enrollments.ListResult{
				Applications: []models.Application{*sampleApplication()},
				Page:         pagination.Build(filter.Params, 26),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/enrollments?status=pending&page=2&limit=25", nil)
	w := httptest.NewRecorder()

	EnrollmentList(svc, nil)(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data       []models.Application `json:"data"`
		Pagination pagination.Page      `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Len(t, envelope.Data, 1)
	assert.Equal(t, int64(26), envelope.Pagination.Total)
	assert.Equal(t, 2, envelope.Pagination.TotalPages)
}

func TestEnrollmentListRejectsBadStatus(t *testing.T) {
	svc := &stubEnrollmentsService{}

	req := httptest.NewRequest(http.MethodGet, "/enrollments?status=maybe", nil)
	w := httptest.NewRecorder()

	EnrollmentList(svc, nil)(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentTransitionRoutesTarget(t *testing.T) {
	app := sampleApplication()
	app.Status = enums.ApplicationStatusRejected

	svc := &stubEnrollmentsService{
		transitionFn: func(ctx context.Context, input enrollments.TransitionInput) (*models.Application, error) {
			assert.Equal(t, app.ID.String(), input.Ref)
			assert.Equal(t, enums.ApplicationStatusRejected, input.Target)
			assert.Equal(t, "group is full", input.Reason)
			return app, nil
		},
	}

	r := chi.NewRouter()
	r.Put("/enrollments/{id}", EnrollmentTransition(svc, nil))

	body := `{"status":"rejected","rejectionReason":"group is full"}`
	req := httptest.NewRequest(http.MethodPut, "/enrollments/"+app.ID.String(), strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollmentTransitionStateConflictMapsTo422(t *testing.T) {
	svc := &stubEnrollmentsService{
		transitionFn: func(ctx context.Context, input enrollments.TransitionInput) (*models.Application, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "application already accepted")
		},
	}

	r := chi.NewRouter()
	r.Put("/enrollments/{id}", EnrollmentTransition(svc, nil))

	body := `{"status":"rejected","rejectionReason":"late"}`
	req := httptest.NewRequest(http.MethodPut, "/enrollments/"+uuid.NewString(), strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestEnrollmentStatusByPhone(t *testing.T) {
	app := sampleApplication()
	svc := &stubEnrollmentsService{
		statusByPhoneFn: func(ctx context.Context, phone string) ([]models.StatusSummary, error) {
			assert.Equal(t, "+998901234567", phone)
			return []models.StatusSummary{app.Summary()}, nil
		},
	}

	r := chi.NewRouter()
	r.Get("/enrollments/status/{phone}", EnrollmentStatusByPhone(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/enrollments/status/+998901234567", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.StatusSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, app.ID, envelope.Data[0].ID)
}

func TestEnrollmentStatusByPhoneNotFound(t *testing.T) {
	svc := &stubEnrollmentsService{
		statusByPhoneFn: func(ctx context.Context, phone string) ([]models.StatusSummary, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no applications for this phone")
		},
	}

	r := chi.NewRouter()
	r.Get("/enrollments/status/{phone}", EnrollmentStatusByPhone(svc, nil))

	req := httptest.NewRequest(http.MethodGet, "/enrollments/status/+998909999999", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestEnrollmentUpdatePatchesOnlyProvidedFields(t *testing.T) {
	app := sampleApplication()
	svc := &stubEnrollmentsService{
		updateFn: func(ctx context.Context, ref string, input enrollments.UpdateInput) (*models.Application, error) {
			assert.Equal(t, app.ID.String(), ref)
			require.NotNil(t, input.Note)
			assert.Equal(t, "call after 6pm", *input.Note)
			assert.Nil(t, input.ChildName)
			assert.Nil(t, input.ChildBirthDate)
			return app, nil
		},
	}

	r := chi.NewRouter()
	r.Patch("/enrollments/{id}", EnrollmentUpdate(svc, nil))

	req := httptest.NewRequest(http.MethodPatch, "/enrollments/"+app.ID.String(), strings.NewReader(`{"note":"call after 6pm"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollmentUpdateRejectsBadBirthDate(t *testing.T) {
	svc := &stubEnrollmentsService{
		updateFn: func(ctx context.Context, ref string, input enrollments.UpdateInput) (*models.Application, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	r := chi.NewRouter()
	r.Patch("/enrollments/{id}", EnrollmentUpdate(svc, nil))

	req := httptest.NewRequest(http.MethodPatch, "/enrollments/"+uuid.NewString(), strings.NewReader(`{"childBirthDate":"yesterday"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollmentDelete(t *testing.T) {
	called := false
	svc := &stubEnrollmentsService{
		softDeleteFn: func(ctx context.Context, ref string) error {
			called = true
			return nil
		},
	}

	r := chi.NewRouter()
	r.Delete("/enrollments/{id}", EnrollmentDelete(svc, nil))

	req := httptest.NewRequest(http.MethodDelete, "/enrollments/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
