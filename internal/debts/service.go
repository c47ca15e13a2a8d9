package debts

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bolajoy/bolajoy-backend/internal/children"
	"github.com/bolajoy/bolajoy-backend/pkg/config"
	dbpkg "github.com/bolajoy/bolajoy-backend/pkg/db"
	"github.com/bolajoy/bolajoy-backend/pkg/db/models"
	"github.com/bolajoy/bolajoy-backend/pkg/enums"
	pkgerrors "github.com/bolajoy/bolajoy-backend/pkg/errors"
	"github.com/bolajoy/bolajoy-backend/pkg/identifier"
	"github.com/bolajoy/bolajoy-backend/pkg/logger"
	"github.com/bolajoy/bolajoy-backend/pkg/metrics"
	"github.com/bolajoy/bolajoy-backend/pkg/outbox"
	"github.com/bolajoy/bolajoy-backend/pkg/outbox/payloads"
)

const (
	jobGenerate   = "generate"
	jobRegenerate = "regenerate"
	jobRemindAll  = "remind_all"
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service runs the monthly billing ledger.
type Service interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error)
	Regenerate(ctx context.Context, input RegenerateInput) (*GenerateResult, error)
	List(ctx context.Context, filter ListFilter) ([]ReconciledDebt, error)
	Stats(ctx context.Context, month *string) (*Stats, error)
	Pay(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Debt, error)
	Remind(ctx context.Context, id uuid.UUID) (*models.Debt, error)
	RemindAll(ctx context.Context) (*RemindAllResult, error)
}

type service struct {
	repo      Repository
	directory children.Service
	tx        txRunner
	outbox    outboxPublisher
	billing   config.BillingConfig
	jobs      *metrics.BillingJobMetrics
	logg      *logger.Logger
}

// NewService builds the debt ledger service with the required dependencies.
func NewService(repo Repository, directory children.Service, tx txRunner, outboxSvc outboxPublisher, billing config.BillingConfig, jobs *metrics.BillingJobMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("debts repository required")
	}
	if directory == nil {
		return nil, fmt.Errorf("child directory service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		directory: directory,
		tx:        tx,
		outbox:    outboxSvc,
		billing:   billing,
		jobs:      jobs,
		logg:      logg,
	}, nil
}

func (s *service) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	start := time.Now()
	result, err := s.generate(ctx, input.Month, input.DueDate)
	s.jobs.ObserveDuration(jobGenerate, time.Since(start))
	if err != nil {
		s.jobs.IncFailure(jobGenerate)
		return nil, err
	}
	s.jobs.IncSuccess(jobGenerate)
	s.jobs.AddDebtsCreated(jobGenerate, result.CreatedCount)
	return result, nil
}

func (s *service) generate(ctx context.Context, month string, dueDate *time.Time) (*GenerateResult, error) {
	if !monthPattern.MatchString(month) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be in YYYY-MM format")
	}
	due := s.dueDateFor(month, dueDate)

	kids, err := s.directory.ActiveWithGroups(ctx)
	if err != nil {
		return nil, err
	}

	created := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.ListByMonth(ctx, month)
		if err != nil {
			return err
		}

		for _, child := range kids {
			if debtExistsFor(existing, child) {
				continue
			}
			debt := &models.Debt{
				ID:       uuid.New(),
				ChildRef: child.ID.String(),
				Month:    month,
				Amount:   s.feeFor(child),
				Status:   enums.DebtStatusPending,
				DueDate:  due,
			}
			if _, err := repo.Create(ctx, debt); err != nil {
				// a concurrent run already billed this child
				if dbpkg.IsUniqueViolation(err, "ux_debts_child_ref_month") {
					continue
				}
				return err
			}
			created++
		}

		if created == 0 {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLedgerGenerated,
			AggregateType: enums.AggregateLedger,
			AggregateID:   uuid.New(),
			Data: payloads.LedgerGeneratedEvent{
				Month:        month,
				CreatedCount: created,
				RanAt:        time.Now(),
			},
		})
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debt generation failed")
	}

	if s.logg != nil {
		logCtx := s.logg.WithBillingMonth(ctx, month)
		s.logg.Info(s.logg.WithField(logCtx, "created_count", created), "billing run finished")
	}
	return &GenerateResult{Month: month, CreatedCount: created}, nil
}

// Regenerate wipes the month's ledger and rebuilds it against current child
// store ids inside a single transaction, so a mid-run failure can never
// leave the month empty.
func (s *service) Regenerate(ctx context.Context, input RegenerateInput) (*GenerateResult, error) {
	if !monthPattern.MatchString(input.Month) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be in YYYY-MM format")
	}
	due := s.dueDateFor(input.Month, input.DueDate)

	start := time.Now()
	kids, err := s.directory.ActiveWithGroups(ctx)
	if err != nil {
		s.jobs.IncFailure(jobRegenerate)
		return nil, err
	}

	created := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.DeleteByMonth(ctx, input.Month, input.KeepPaid); err != nil {
			return err
		}

		var survivors []models.Debt
		if input.KeepPaid {
			var err error
			survivors, err = repo.ListByMonth(ctx, input.Month)
			if err != nil {
				return err
			}
		}

		for _, child := range kids {
			if debtExistsFor(survivors, child) {
				continue
			}
			debt := &models.Debt{
				ID:       uuid.New(),
				ChildRef: child.ID.String(),
				Month:    input.Month,
				Amount:   s.feeFor(child),
				Status:   enums.DebtStatusPending,
				DueDate:  due,
			}
			if _, err := repo.Create(ctx, debt); err != nil {
				return err
			}
			created++
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLedgerGenerated,
			AggregateType: enums.AggregateLedger,
			AggregateID:   uuid.New(),
			Data: payloads.LedgerGeneratedEvent{
				Month:        input.Month,
				CreatedCount: created,
				Regenerated:  true,
				RanAt:        time.Now(),
			},
		})
	})
	s.jobs.ObserveDuration(jobRegenerate, time.Since(start))
	if err != nil {
		s.jobs.IncFailure(jobRegenerate)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debt regeneration failed")
	}
	s.jobs.IncSuccess(jobRegenerate)
	s.jobs.AddDebtsCreated(jobRegenerate, created)

	return &GenerateResult{Month: input.Month, CreatedCount: created}, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]ReconciledDebt, error) {
	if filter.Month != nil && !monthPattern.MatchString(*filter.Month) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be in YYYY-MM format")
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *filter.Status))
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing debts failed")
	}
	kids, err := s.directory.All(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	out := make([]ReconciledDebt, 0, len(rows))
	for _, debt := range rows {
		out = append(out, s.reconcile(debt, kids, now))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysOverdue > out[j].DaysOverdue
	})
	return out, nil
}

// reconcile joins one debt with its child through the identifier match
// chain. Unresolved debts are still returned, flagged with the "unknown"
// name, never dropped.
func (s *service) reconcile(debt models.Debt, kids []models.Child, now time.Time) ReconciledDebt {
	view := ReconciledDebt{
		ID:              debt.ID,
		ChildRef:        debt.ChildRef,
		ChildName:       "unknown",
		Month:           debt.Month,
		Amount:          debt.Amount,
		PaidAmount:      debt.PaidAmount,
		RemainingAmount: debt.Remaining(),
		Status:          debt.Status,
		DueDate:         debt.DueDate,
		DaysOverdue:     debt.DaysOverdue(now),
		PaidAt:          debt.PaidAt,
		LastReminder:    debt.LastReminder,
	}

	if child := resolveChild(debt.ChildRef, kids); child != nil {
		id := child.ID
		view.ChildID = &id
		view.ChildName = child.FullName()
		if child.Group != nil {
			view.GroupName = child.Group.Name
		}
	}
	return view
}

func (s *service) Stats(ctx context.Context, month *string) (*Stats, error) {
	if month != nil && !monthPattern.MatchString(*month) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "month must be in YYYY-MM format")
	}

	rows, err := s.repo.List(ctx, ListFilter{Month: month})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading debts failed")
	}

	stats := &Stats{
		TotalAmount:   decimal.Zero,
		PaidAmount:    decimal.Zero,
		PendingAmount: decimal.Zero,
		CountsByStatus: map[string]int{
			enums.DebtStatusPending.String(): 0,
			enums.DebtStatusPartial.String(): 0,
			enums.DebtStatusPaid.String():    0,
		},
		CollectionRate: decimal.Zero,
	}
	if month != nil {
		stats.Month = *month
	}
	for _, debt := range rows {
		stats.TotalAmount = stats.TotalAmount.Add(debt.Amount)
		stats.PaidAmount = stats.PaidAmount.Add(debt.PaidAmount)
		stats.CountsByStatus[debt.Status.String()]++
	}
	stats.PendingAmount = stats.TotalAmount.Sub(stats.PaidAmount)
	if stats.TotalAmount.IsPositive() {
		stats.CollectionRate = stats.PaidAmount.Div(stats.TotalAmount).Round(4)
	}
	return stats, nil
}

func (s *service) Pay(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*models.Debt, error) {
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	debt, err := s.findDebt(ctx, id)
	if err != nil {
		return nil, err
	}

	newPaid := debt.PaidAmount.Add(amount)
	if newPaid.GreaterThan(debt.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment exceeds the remaining balance").
			WithDetails(map[string]string{
				"remaining": debt.Remaining().String(),
				"amount":    amount.String(),
			})
	}

	now := time.Now()
	debt.PaidAmount = newPaid
	debt.Status = debt.DeriveStatus()
	debt.PaidAt = &now

	updated, err := s.repo.Update(ctx, debt)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "applying payment failed")
	}
	return updated, nil
}

func (s *service) Remind(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
	debt, err := s.findDebt(ctx, id)
	if err != nil {
		return nil, err
	}
	if debt.Status == enums.DebtStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "debt is already paid")
	}

	event := payloads.DebtReminderEvent{
		DebtID:    debt.ID,
		ChildRef:  debt.ChildRef,
		ChildName: "unknown",
		Month:     debt.Month,
		Remaining: debt.Remaining(),
	}
	// Debts with refs the directory no longer knows are still remindable,
	// just under the "unknown" name.
	child, err := s.directory.Lookup(ctx, debt.ChildRef)
	if err == nil {
		event.ChildName = child.FullName()
		event.ParentPhone = child.ParentPhone
	} else if coded := pkgerrors.As(err); coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		return nil, err
	}

	now := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDebtReminder,
			AggregateType: enums.AggregateDebt,
			AggregateID:   debt.ID,
			Data:          event,
		}); err != nil {
			return err
		}
		return s.repo.WithTx(tx).StampLastReminder(ctx, []uuid.UUID{debt.ID}, now)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing reminder failed")
	}

	debt.LastReminder = &now
	return debt, nil
}

// RemindAll composes one aggregate report for every non-paid debt and queues
// it as a single event. The last_reminder stamp shares the transaction with
// the emit, so a failed queue leaves the stamps unset.
func (s *service) RemindAll(ctx context.Context) (*RemindAllResult, error) {
	start := time.Now()

	rows, err := s.repo.ListNonPaid(ctx)
	if err != nil {
		s.jobs.IncFailure(jobRemindAll)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading debts failed")
	}
	if len(rows) == 0 {
		s.jobs.IncSuccess(jobRemindAll)
		return &RemindAllResult{TotalAmount: decimal.Zero}, nil
	}

	kids, err := s.directory.All(ctx)
	if err != nil {
		s.jobs.IncFailure(jobRemindAll)
		return nil, err
	}

	now := time.Now()
	total := decimal.Zero
	ids := make([]uuid.UUID, 0, len(rows))
	lines := make([]payloads.DebtorLine, 0, len(rows))
	for _, debt := range rows {
		line := payloads.DebtorLine{
			ChildName: "unknown",
			Month:     debt.Month,
			Remaining: debt.Remaining(),
			Overdue:   debt.DaysOverdue(now) > 0,
		}
		if child := resolveChild(debt.ChildRef, kids); child != nil {
			line.ChildName = child.FullName()
			if child.Group != nil {
				line.GroupName = child.Group.Name
			}
		}
		lines = append(lines, line)
		total = total.Add(debt.Remaining())
		ids = append(ids, debt.ID)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDebtReminderBatch,
			AggregateType: enums.AggregateLedger,
			AggregateID:   uuid.New(),
			Data: payloads.DebtReminderBatchEvent{
				DebtorCount: len(lines),
				TotalAmount: total,
				Lines:       lines,
				GeneratedAt: now,
			},
		}); err != nil {
			return err
		}
		return s.repo.WithTx(tx).StampLastReminder(ctx, ids, now)
	})
	s.jobs.ObserveDuration(jobRemindAll, time.Since(start))
	if err != nil {
		s.jobs.IncFailure(jobRemindAll)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "queueing reminder batch failed")
	}
	s.jobs.IncSuccess(jobRemindAll)

	return &RemindAllResult{
		SentCount:   len(ids),
		TotalCount:  len(rows),
		TotalAmount: total,
	}, nil
}

func (s *service) findDebt(ctx context.Context, id uuid.UUID) (*models.Debt, error) {
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "debt not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debt lookup failed")
	}
	return debt, nil
}

func (s *service) feeFor(child models.Child) decimal.Decimal {
	if child.Group != nil && child.Group.MonthlyFee != nil {
		return *child.Group.MonthlyFee
	}
	return s.billing.DefaultFee()
}

func (s *service) dueDateFor(month string, override *time.Time) time.Time {
	if override != nil {
		return *override
	}
	parsed, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}
	}
	return time.Date(parsed.Year(), parsed.Month(), s.dueDay(), 0, 0, 0, 0, time.UTC)
}

func (s *service) dueDay() int {
	if s.billing.DueDay >= 1 && s.billing.DueDay <= 28 {
		return s.billing.DueDay
	}
	return 5
}

func debtExistsFor(existing []models.Debt, child models.Child) bool {
	cand := child.IdentifierCandidate()
	for _, debt := range existing {
		if identifier.Matches(debt.ChildRef, cand) {
			return true
		}
	}
	return false
}

func resolveChild(ref string, kids []models.Child) *models.Child {
	cands := make([]identifier.Candidate, len(kids))
	for i, child := range kids {
		cands[i] = child.IdentifierCandidate()
	}
	if idx, kind := identifier.Resolve(ref, cands); kind != identifier.MatchNone {
		return &kids[idx]
	}
	return nil
}
