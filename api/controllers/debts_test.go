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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bolajoy/bolajoy-backend/internal/debts"
	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
)

type stubDebtsService struct {
	generateFn   func(ctx context.Context, input debts.GenerateInput) (*debts.GenerateResult, error)
	regenerateFn func(ctx context.Context, input debts.RegenerateInput) (*debts.GenerateResult, error)
	listFn       func(ctx context.Context, filter debts.ListFilter) ([]debts.ReconciledDebt, error)
	statsFn      func(ctx context.Context, month *string) (*debts.Stats, error)
	payFn        func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Debt, error)
	remindFn     func(ctx context.Context, id uuid.UUID) (*models.Debt, error)
	remindAllFn  func(ctx context.Context) (*debts.RemindAllResult, error)
}

func (s *stubDebtsService) Generate(ctx context.Context, input debts.GenerateInput) (*debts.GenerateResult, error) {
	return s.generateFn(ctx, input)
}

func (s *stubDebtsService) Regenerate(ctx context.Context, input debts.RegenerateInput) (*debts.GenerateResult, error) {
	return s.regenerateFn(ctx, input)
}

func (s *stubDebtsService) List(ctx context.Context, filter debts.ListFilter) ([]debts.ReconciledDebt, error) {
	return s.listFn(ctx, filter)
}

func (s *stubDebtsService) Stats(ctx context.Context, month *string) (*debts.Stats, error) {
	return s.statsFn(ctx, month)
}

func (s *stubDebtsService) Pay(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Debt, error) {
	return s.payFn(ctx, id, amount)
}

func (s *stubDebtsService) Remind(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
	return s.remindFn(ctx, id)
}

func (s *stubDebtsService) RemindAll(ctx context.Context) (*debts.RemindAllResult, error) {
	return s.remindAllFn(ctx)
}

func TestDebtListPassesFilter(t *testing.T) {
	svc := &stubDebtsService{
		listFn: func(ctx context.Context, filter debts.ListFilter) ([]debts.ReconciledDebt, error) {
			require.NotNil(t, filter.Month)
			assert.Equal(t, "2025-01", *filter.Month)
			require.NotNil(t, filter.Status)
			assert.Equal(t, enums.DebtStatusPartial, *filter.Status)
			return []debts.ReconciledDebt{{ChildName: "Ali Valiyev", Month: "2025-01"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/debts?month=2025-01&status=partial", nil)
	w := httptest.NewRecorder()

	DebtList(svc, nil)(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []debts.ReconciledDebt `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "Ali Valiyev", envelope.Data[0].ChildName)
}

func TestDebtListRejectsBadStatus(t *testing.T) {
	svc := &stubDebtsService{}

	req := httptest.NewRequest(http.MethodGet, "/debts?status=overdue", nil)
	w := httptest.NewRecorder()

	DebtList(svc, nil)(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDebtStatsScopesMonth(t *testing.T) {
	svc := &stubDebtsService{
		statsFn: func(ctx context.Context, month *string) (*debts.Stats, error) {
			require.NotNil(t, month)
			assert.Equal(t, "2025-02", *month)
			return &debts.Stats{
				Month:          *month,
				TotalAmount:    decimal.NewFromInt(1000000),
				PaidAmount:     decimal.NewFromInt(750000),
				PendingAmount:  decimal.NewFromInt(250000),
				CountsByStatus: map[string]int{"paid": 1, "partial": 1},
				CollectionRate: decimal.RequireFromString("0.75"),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/debts/stats?month=2025-02", nil)
	w := httptest.NewRecorder()

	DebtStats(svc, nil)(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data debts.Stats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.True(t, envelope.Data.PaidAmount.Equal(decimal.NewFromInt(750000)))
}

func TestDebtGenerateParsesDueDate(t *testing.T) {
	svc := &stubDebtsService{
		generateFn: func(ctx context.Context, input debts.GenerateInput) (*debts.GenerateResult, error) {
			assert.Equal(t, "2025-03", input.Month)
			require.NotNil(t, input.DueDate)
			assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), *input.DueDate)
			return &debts.GenerateResult{Month: "2025-03", CreatedCount: 12}, nil
		},
	}

	body := `{"month":"2025-03","dueDate":"2025-03-10"}`
	req := httptest.NewRequest(http.MethodPost, "/debts/generate", strings.NewReader(body))
	w := httptest.NewRecorder()

	DebtGenerate(svc, nil)(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data debts.GenerateResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, 12, envelope.Data.CreatedCount)
}

func TestDebtGenerateRequiresMonth(t *testing.T) {
	svc := &stubDebtsService{
		generateFn: func(ctx context.Context, input debts.GenerateInput) (*debts.GenerateResult, error) {
			t.Fatal("service must not be called")
			return nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/debts/generate", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	DebtGenerate(svc, nil)(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDebtRegeneratePassesKeepPaid(t *testing.T) {
	svc := &stubDebtsService{
		regenerateFn: func(ctx context.Context, input debts.RegenerateInput) (*debts.GenerateResult, error) {
			assert.Equal(t, "2025-03", input.Month)
			assert.True(t, input.KeepPaid)
			return &debts.GenerateResult{Month: "2025-03", CreatedCount: 9}, nil
		},
	}

	body := `{"month":"2025-03","keepPaid":true}`
	req := httptest.NewRequest(http.MethodPost, "/debts/regenerate", strings.NewReader(body))
	w := httptest.NewRecorder()

	DebtRegenerate(svc, nil)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestDebtPay(t *testing.T) {
	debtID := uuid.New()
	svc := &stubDebtsService{
		payFn: func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Debt, error) {
			assert.Equal(t, debtID, id)
			assert.True(t, amount.Equal(decimal.NewFromInt(200000)))
			return &models.Debt{
				ID:         debtID,
				Amount:     decimal.NewFromInt(500000),
				PaidAmount: decimal.NewFromInt(200000),
				Status:     enums.DebtStatusPartial,
			}, nil
		},
	}

	r := chi.NewRouter()
	r.Post("/debts/{id}/pay", DebtPay(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/debts/"+debtID.String()+"/pay", strings.NewReader(`{"amount":200000}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data models.Debt `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, enums.DebtStatusPartial, envelope.Data.Status)
}

func TestDebtPayRejectsBadID(t *testing.T) {
	svc := &stubDebtsService{}

	r := chi.NewRouter()
	r.Post("/debts/{id}/pay", DebtPay(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/debts/not-a-uuid/pay", strings.NewReader(`{"amount":200000}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDebtPayOverpaymentMapsTo409(t *testing.T) {
	svc := &stubDebtsService{
		payFn: func(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Debt, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment exceeds remaining debt")
		},
	}

	r := chi.NewRouter()
	r.Post("/debts/{id}/pay", DebtPay(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/debts/"+uuid.NewString()+"/pay", strings.NewReader(`{"amount":900000}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestDebtRemind(t *testing.T) {
	debtID := uuid.New()
	now := time.Now()
	svc := &stubDebtsService{
		remindFn: func(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
			assert.Equal(t, debtID, id)
			return &models.Debt{ID: debtID, Status: enums.DebtStatusPending, LastReminder: &now}, nil
		},
	}

	r := chi.NewRouter()
	r.Post("/debts/{id}/remind", DebtRemind(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/debts/"+debtID.String()+"/remind", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestDebtRemindPaidMapsTo422(t *testing.T) {
	svc := &stubDebtsService{
		remindFn: func(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "debt already paid")
		},
	}

	r := chi.NewRouter()
	r.Post("/debts/{id}/remind", DebtRemind(svc, nil))

	req := httptest.NewRequest(http.MethodPost, "/debts/"+uuid.NewString()+"/remind", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDebtRemindAll(t *testing.T) {
	svc := &stubDebtsService{
		remindAllFn: func(ctx context.Context) (*debts.RemindAllResult, error) {
			return &debts.RemindAllResult{
				SentCount:   3,
				TotalCount:  3,
				TotalAmount: decimal.NewFromInt(1500000),
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/debts/remind-all", nil)
	w := httptest.NewRecorder()

	DebtRemindAll(svc, nil)(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data debts.RemindAllResult `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	assert.Equal(t, 3, envelope.Data.SentCount)
}
