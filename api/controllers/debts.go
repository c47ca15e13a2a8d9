package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bolajoy/bolajoy-backend/api/responses"
	"github.com/bolajoy/bolajoy-backend/api/validators"
	"github.com/bolajoy/bolajoy-backend/internal/debts"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
	"github.com/bolajoy/bolajoy-backend/pkg/logger"
)

const dueDateLayout = "2006-01-02"

// DebtList returns the reconciled ledger, most overdue first.
func DebtList(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter debts.ListFilter
		if raw := validators.QueryString(r, "month"); raw != "" {
			filter.Month = &raw
		}
		if raw := validators.QueryString(r, "status"); raw != "" {
			status, err := enums.ParseDebtStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		out, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// DebtStats aggregates the ledger, optionally scoped to one month.
func DebtStats(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var month *string
		if raw := validators.QueryString(r, "month"); raw != "" {
			month = &raw
		}

		stats, err := svc.Stats(r.Context(), month)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

type debtGenerateRequest struct {
	Month   string `json:"month" validate:"required"`
	DueDate string `json:"dueDate"`
}

func (req debtGenerateRequest) dueDate() (*time.Time, error) {
	if req.DueDate == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dueDateLayout, req.DueDate)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dueDate must be a date in YYYY-MM-DD format")
	}
	return &parsed, nil
}

// DebtGenerate runs the monthly billing job.
func DebtGenerate(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req debtGenerateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		due, err := req.dueDate()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Generate(r.Context(), debts.GenerateInput{Month: req.Month, DueDate: due})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type debtRegenerateRequest struct {
	Month    string `json:"month" validate:"required"`
	DueDate  string `json:"dueDate"`
	KeepPaid bool   `json:"keepPaid"`
}

// DebtRegenerate wipes and rebuilds a month's ledger.
func DebtRegenerate(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req debtRegenerateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var due *time.Time
		if req.DueDate != "" {
			parsed, err := time.Parse(dueDateLayout, req.DueDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "dueDate must be a date in YYYY-MM-DD format"))
				return
			}
			due = &parsed
		}

		result, err := svc.Regenerate(r.Context(), debts.RegenerateInput{
			Month:    req.Month,
			DueDate:  due,
			KeepPaid: req.KeepPaid,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type debtPayRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

// DebtPay applies a payment to one debt.
func DebtPay(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid debt id"))
			return
		}

		var req debtPayRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		debt, err := svc.Pay(r.Context(), id, req.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debt)
	}
}

// DebtRemind queues a reminder for one debt.
func DebtRemind(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid debt id"))
			return
		}

		debt, err := svc.Remind(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, debt)
	}
}

// DebtRemindAll queues one aggregate reminder for every non-paid debt.
func DebtRemindAll(svc debts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.RemindAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
