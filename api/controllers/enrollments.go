package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bolajoy/bolajoy-backend/api/responses"
	"github.com/bolajoy/bolajoy-backend/api/validators"
	"github.com/bolajoy/bolajoy-backend/internal/enrollments"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
	"github.com/bolajoy/bolajoy-backend/pkg/logger"
	"github.com/bolajoy/bolajoy-backend/pkg/pagination"
)

const birthDateLayout = "2006-01-02"

type enrollmentSubmitRequest struct {
	ChildName        string `json:"childName" validate:"required"`
	ChildBirthDate   string `json:"childBirthDate" validate:"required"`
	ParentName       string `json:"parentName" validate:"required"`
	ParentPhone      string `json:"parentPhone" validate:"required"`
	ParentEmail      string `json:"parentEmail" validate:"required"`
	Note             string `json:"note"`
	ContractAccepted bool   `json:"contractAccepted"`
}

// EnrollmentSubmit accepts a public enrollment application.
func EnrollmentSubmit(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrollmentSubmitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		birthDate, err := time.Parse(birthDateLayout, req.ChildBirthDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "application failed validation").
					WithDetails(map[string][]string{"childBirthDate": {"must be a date in YYYY-MM-DD format"}}))
			return
		}

		app, err := svc.Submit(r.Context(), enrollments.SubmitInput{
			ChildName:        req.ChildName,
			ChildBirthDate:   birthDate,
			ParentName:       req.ParentName,
			ParentPhone:      req.ParentPhone,
			ParentEmail:      req.ParentEmail,
			Note:             req.Note,
			ContractAccepted: req.ContractAccepted,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, app)
	}
}

// EnrollmentList pages through applications for reviewers.
func EnrollmentList(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<20)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := enrollments.ListFilter{
			Params: pagination.Params{Page: page, Limit: limit},
		}
		if raw := validators.QueryString(r, "status"); raw != "" {
			status, err := enums.ParseApplicationStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WritePaged(w, result.Applications, result.Page)
	}
}

// EnrollmentStatusByPhone serves the public, rate-limited status lookup.
func EnrollmentStatusByPhone(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := svc.StatusByPhone(r.Context(), chi.URLParam(r, "phone"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summaries)
	}
}

// EnrollmentGet returns one application by store or legacy id.
func EnrollmentGet(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, app)
	}
}

type enrollmentTransitionRequest struct {
	Status          string `json:"status" validate:"required,oneof=accepted rejected"`
	RejectionReason string `json:"rejectionReason"`
}

// EnrollmentTransition moves an application to a terminal status.
func EnrollmentTransition(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrollmentTransitionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseApplicationStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		app, err := svc.Transition(r.Context(), enrollments.TransitionInput{
			Ref:    chi.URLParam(r, "id"),
			Target: target,
			Reason: req.RejectionReason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, app)
	}
}

type enrollmentUpdateRequest struct {
	ChildName      *string `json:"childName"`
	ChildBirthDate *string `json:"childBirthDate"`
	ParentName     *string `json:"parentName"`
	ParentPhone    *string `json:"parentPhone"`
	ParentEmail    *string `json:"parentEmail"`
	Note           *string `json:"note"`
}

// EnrollmentUpdate edits a still-pending application. Absent fields keep
// their current values.
func EnrollmentUpdate(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req enrollmentUpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := enrollments.UpdateInput{
			ChildName:   req.ChildName,
			ParentName:  req.ParentName,
			ParentPhone: req.ParentPhone,
			ParentEmail: req.ParentEmail,
			Note:        req.Note,
		}
		if req.ChildBirthDate != nil {
			birthDate, err := time.Parse(birthDateLayout, *req.ChildBirthDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "application failed validation").
						WithDetails(map[string][]string{"childBirthDate": {"must be a date in YYYY-MM-DD format"}}))
				return
			}
			input.ChildBirthDate = &birthDate
		}

		app, err := svc.Update(r.Context(), chi.URLParam(r, "id"), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, app)
	}
}

// EnrollmentDelete soft deletes an application.
func EnrollmentDelete(svc enrollments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
