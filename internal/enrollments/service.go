package enrollments

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/internal/children"
	dbpkg "github.com/bolajoy/bolajoy-backend/pkg/db"
	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
	"github.com/bolajoy/bolajoy-backend/pkg/identifier"
	"github.com/bolajoy/bolajoy-backend/pkg/logger"
	"github.com/bolajoy/bolajoy-backend/pkg/outbox"
	"github.com/bolajoy/bolajoy-backend/pkg/outbox/payloads"
	"github.com/bolajoy/bolajoy-backend/pkg/pagination"
	"github.com/bolajoy/bolajoy-backend/pkg/phone"
)

const statusLookupLimit = 5

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service runs the enrollment application lifecycle.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*models.Application, error)
	Get(ctx context.Context, ref string) (*models.Application, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
	Update(ctx context.Context, ref string, input UpdateInput) (*models.Application, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Application, error)
	StatusByPhone(ctx context.Context, rawPhone string) ([]models.StatusSummary, error)
	SoftDelete(ctx context.Context, ref string) error
}

type service struct {
	repo     Repository
	children children.Repository
	tx       txRunner
	outbox   outboxPublisher
	logg     *logger.Logger
}

// NewService builds the enrollment service with the required dependencies.
func NewService(repo Repository, childrenRepo children.Repository, tx txRunner, outboxSvc outboxPublisher, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("enrollments repository required")
	}
	if childrenRepo == nil {
		return nil, fmt.Errorf("children repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     repo,
		children: childrenRepo,
		tx:       tx,
		outbox:   outboxSvc,
		logg:     logg,
	}, nil
}

func (s *service) Submit(ctx context.Context, input SubmitInput) (*models.Application, error) {
	if violations := validateSubmit(input); len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application failed validation").
			WithDetails(violations)
	}

	now := time.Now()
	app := &models.Application{
		ID:                 uuid.New(),
		ChildName:          strings.TrimSpace(input.ChildName),
		ChildBirthDate:     input.ChildBirthDate,
		ParentName:         strings.TrimSpace(input.ParentName),
		ParentPhone:        phone.Normalize(input.ParentPhone),
		ParentEmail:        strings.TrimSpace(input.ParentEmail),
		Note:               strings.TrimSpace(input.Note),
		ContractAccepted:   true,
		ContractAcceptedAt: &now,
		Status:             enums.ApplicationStatusPending,
		SubmittedAt:        now,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, app); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventApplicationSubmitted,
			AggregateType: enums.AggregateApplication,
			AggregateID:   app.ID,
			Data: payloads.ApplicationSubmittedEvent{
				ApplicationID: app.ID,
				ChildName:     app.ChildName,
				ParentName:    app.ParentName,
				ParentPhone:   app.ParentPhone,
				ParentEmail:   app.ParentEmail,
				SubmittedAt:   app.SubmittedAt,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing application failed")
	}
	return app, nil
}

func (s *service) Get(ctx context.Context, ref string) (*models.Application, error) {
	return s.find(ctx, s.repo, ref)
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	return s.list(ctx, filter)
}

func (s *service) list(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *filter.Status))
	}
	apps, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing applications failed")
	}
	return &ListResult{
		Applications: apps,
		Page:         pagination.Build(filter.Params, total),
	}, nil
}

func (s *service) Update(ctx context.Context, ref string, input UpdateInput) (*models.Application, error) {
	app, err := s.find(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}
	if app.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("application already %s", app.Status))
	}

	if input.ChildName != nil {
		app.ChildName = strings.TrimSpace(*input.ChildName)
	}
	if input.ChildBirthDate != nil {
		app.ChildBirthDate = *input.ChildBirthDate
	}
	if input.ParentName != nil {
		app.ParentName = strings.TrimSpace(*input.ParentName)
	}
	if input.ParentPhone != nil {
		app.ParentPhone = phone.Normalize(*input.ParentPhone)
	}
	if input.ParentEmail != nil {
		app.ParentEmail = strings.TrimSpace(*input.ParentEmail)
	}
	if input.Note != nil {
		app.Note = strings.TrimSpace(*input.Note)
	}

	if violations := validateSubmit(SubmitInput{
		ChildName:        app.ChildName,
		ChildBirthDate:   app.ChildBirthDate,
		ParentName:       app.ParentName,
		ParentPhone:      app.ParentPhone,
		ParentEmail:      app.ParentEmail,
		ContractAccepted: app.ContractAccepted,
	}); len(violations) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application failed validation").
			WithDetails(violations)
	}

	updated, err := s.repo.Update(ctx, app)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating application failed")
	}
	return updated, nil
}

// Transition moves an application to accepted or rejected. A repeat of an
// already-applied transition is a no-op that returns the current state; a
// conflicting target on a terminal application is a state conflict.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Application, error) {
	if input.Target != enums.ApplicationStatusAccepted && input.Target != enums.ApplicationStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("target status must be accepted or rejected, got %q", input.Target))
	}
	app, err := s.find(ctx, s.repo, input.Ref)
	if err != nil {
		return nil, err
	}

	// Terminal states answer before input validation so a retried
	// decision stays idempotent even without the original reason.
	if app.Status.IsTerminal() {
		if app.Status == input.Target {
			return app, nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("application already %s", app.Status))
	}

	reason := strings.TrimSpace(input.Reason)
	if input.Target == enums.ApplicationStatusRejected && reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection requires a reason")
	}

	now := time.Now()
	app.Status = input.Target
	app.ProcessedAt = &now
	if input.Target == enums.ApplicationStatusAccepted {
		app.ReviewedAt = &now
	} else {
		app.RejectionReason = &reason
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Update(ctx, app); err != nil {
			return err
		}

		decided := payloads.ApplicationDecidedEvent{
			ApplicationID: app.ID,
			ChildName:     app.ChildName,
			ParentPhone:   app.ParentPhone,
			ParentEmail:   app.ParentEmail,
			Status:        app.Status,
			ProcessedAt:   now,
		}
		eventType := enums.EventApplicationAccepted
		if input.Target == enums.ApplicationStatusRejected {
			eventType = enums.EventApplicationRejected
			decided.RejectionReason = reason
		}
		if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateApplication,
			AggregateID:   app.ID,
			Data:          decided,
		}); err != nil {
			return err
		}

		if input.Target == enums.ApplicationStatusAccepted {
			return s.provisionChild(ctx, tx, app, now)
		}
		return nil
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transition failed")
	}
	return app, nil
}

// provisionChild creates the child record for an accepted application. The
// application_id lookup short-circuits a retried accept, the directory check
// catches same-child resubmissions under a different application, and the
// application_id unique index absorbs concurrent retries as the idempotent
// no-op.
func (s *service) provisionChild(ctx context.Context, tx *gorm.DB, app *models.Application, now time.Time) error {
	repo := s.children.WithTx(tx)

	if _, err := repo.FindByApplicationID(ctx, app.ID); err == nil {
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	firstName, lastName := splitChildName(app.ChildName)

	if existing, err := repo.FindByFirstTokenAndPhone(ctx, firstName, app.ParentPhone); err == nil {
		if s.logg != nil {
			ctx = s.logg.WithApplicationID(ctx, app.ID.String())
			s.logg.Info(s.logg.WithChildRef(ctx, existing.ID.String()), "child already on file, skipping provisioning")
		}
		return nil
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	appID := app.ID
	child := &models.Child{
		ID:            uuid.New(),
		ApplicationID: &appID,
		FirstName:     firstName,
		LastName:      lastName,
		BirthDate:     app.ChildBirthDate,
		ParentName:    app.ParentName,
		ParentPhone:   app.ParentPhone,
		ParentEmail:   app.ParentEmail,
		EnrolledAt:    &now,
		Active:        true,
	}
	if _, err := repo.Create(ctx, child); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_children_application_id") {
			return nil
		}
		return err
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventChildProvisioned,
		AggregateType: enums.AggregateChild,
		AggregateID:   child.ID,
		Data: payloads.ChildProvisionedEvent{
			ChildID:       child.ID,
			ApplicationID: app.ID,
			FirstName:     child.FirstName,
			LastName:      child.LastName,
			EnrolledAt:    now,
		},
	})
}

func (s *service) StatusByPhone(ctx context.Context, rawPhone string) ([]models.StatusSummary, error) {
	normalized := phone.Normalize(rawPhone)
	if !phone.IsValid(normalized) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid phone number")
	}

	apps, err := s.repo.LastByPhone(ctx, normalized, statusLookupLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "status lookup failed")
	}
	if len(apps) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no applications for this phone")
	}

	out := make([]models.StatusSummary, len(apps))
	for i, app := range apps {
		out[i] = app.Summary()
	}
	return out, nil
}

func (s *service) SoftDelete(ctx context.Context, ref string) error {
	app, err := s.find(ctx, s.repo, ref)
	if err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, app.ID, time.Now()); err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting application failed")
	}
	return nil
}

// find resolves an application by either identifier generation.
func (s *service) find(ctx context.Context, repo Repository, ref string) (*models.Application, error) {
	norm := identifier.Normalize(ref)
	if norm == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "application id required")
	}

	if id, err := uuid.Parse(norm); err == nil {
		app, err := repo.FindByID(ctx, id)
		if err == nil {
			return app, nil
		}
		if err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "application lookup failed")
		}
	}

	app, err := repo.FindByLegacyID(ctx, norm)
	if err == nil {
		return app, nil
	}
	if err == gorm.ErrRecordNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "application not found")
	}
	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "application lookup failed")
}

func validateSubmit(input SubmitInput) map[string][]string {
	violations := map[string][]string{}
	add := func(field, rule string) {
		violations[field] = append(violations[field], rule)
	}

	childName := strings.TrimSpace(input.ChildName)
	if n := len([]rune(childName)); n < 2 || n > 100 {
		add("childName", "must be between 2 and 100 characters")
	}

	if input.ChildBirthDate.IsZero() {
		add("childBirthDate", "is required")
	} else if age := ageInYears(input.ChildBirthDate, time.Now()); age < 1 || age > 7 {
		add("childBirthDate", "child must be between 1 and 7 years old")
	}

	parentName := strings.TrimSpace(input.ParentName)
	if n := len([]rune(parentName)); n < 2 || n > 100 {
		add("parentName", "must be between 2 and 100 characters")
	}

	if !phone.IsValid(input.ParentPhone) {
		add("parentPhone", "must be a valid +998 phone number")
	}

	if !emailPattern.MatchString(strings.TrimSpace(input.ParentEmail)) {
		add("parentEmail", "must be a valid email address")
	}

	if !input.ContractAccepted {
		add("contractAccepted", "contract must be accepted")
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}

func ageInYears(birthDate, now time.Time) int {
	age := now.Year() - birthDate.Year()
	if now.YearDay() < birthDate.YearDay() {
		age--
	}
	return age
}

func splitChildName(name string) (string, string) {
	tokens := strings.Fields(name)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}
