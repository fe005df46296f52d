// internal/app/repetition_service.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"record_repeater/internal/domain/record"
	"record_repeater/internal/domain/repetition"
	domainTelegram "record_repeater/internal/domain/telegram"
	idb "record_repeater/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// RepetitionProcessor is what a timer or queue needs to drive repetitions.
type RepetitionProcessor interface {
	// ListDue returns the IDs of rules due on or before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]int64, error)
	// ProcessDue produces one clone per due rule and advances its schedule.
	ProcessDue(ctx context.Context, asOf time.Time) (RunReport, error)
}

// CreateRepetitionRequest describes a new repetition rule.
type CreateRepetitionRequest struct {
	RecordType string
	RecordName string
	PeriodUnit repetition.PeriodUnit
	StartDate  time.Time    // defaults to today when zero
	EndDate    sql.NullTime // open ended when not valid
}

// RunReport summarises one ProcessDue pass.
type RunReport struct {
	AsOf          time.Time
	Due           int
	Cloned        int
	AlreadyCloned int // clone for the due date existed, schedule still advanced
	Completed     int // rules that reached their end date
	Failed        int
}

func (r RunReport) String() string {
	return fmt.Sprintf("Repetition run for %s: %d due, %d cloned, %d already cloned, %d completed, %d failed",
		r.AsOf.Format(repetition.DateLayout), r.Due, r.Cloned, r.AlreadyCloned, r.Completed, r.Failed)
}

type RepetitionService struct {
	rules       repetition.Repository
	records     record.Repository
	plans       record.CopyPlans
	notifier    domainTelegram.Client // nil disables run notifications
	adminChatID int64
	logger      *logrus.Entry
	now         func() time.Time
}

var _ RepetitionProcessor = (*RepetitionService)(nil)

func NewRepetitionService(
	rules repetition.Repository,
	records record.Repository,
	plans record.CopyPlans,
	notifier domainTelegram.Client,
	adminChatID int64,
	logger *logrus.Entry,
) *RepetitionService {
	return &RepetitionService{
		rules:       rules,
		records:     records,
		plans:       plans,
		notifier:    notifier,
		adminChatID: adminChatID,
		logger:      logger,
		now:         time.Now,
	}
}

// Today is the current date on the service clock.
func (s *RepetitionService) Today() time.Time {
	return repetition.DateOf(s.now())
}

// ListRepeatableTypes returns the record types that have a copy plan.
func (s *RepetitionService) ListRepeatableTypes() []string {
	return s.plans.Types()
}

// CreateRepetition validates and stores a new rule with its first due date.
// A source record can be on at most one repetition.
func (s *RepetitionService) CreateRepetition(ctx context.Context, req CreateRepetitionRequest) (*repetition.Rule, error) {
	log := s.logger.WithFields(logrus.Fields{
		"record_type": req.RecordType,
		"record_name": req.RecordName,
		"period_unit": req.PeriodUnit,
	})

	if _, ok := s.plans[req.RecordType]; !ok {
		return nil, fmt.Errorf("%w: %s", repetition.ErrRecordTypeNotRepeatable, req.RecordType)
	}

	today := s.Today()
	rule := &repetition.Rule{
		RecordType: req.RecordType,
		RecordName: req.RecordName,
		PeriodUnit: req.PeriodUnit,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
	}
	if rule.StartDate.IsZero() {
		rule.StartDate = today
	}
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.records.GetByName(ctx, req.RecordType, req.RecordName); err != nil {
		if errors.Is(err, idb.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load source record: %w", err)
	}

	existing, err := s.rules.GetBySource(ctx, req.RecordType, req.RecordName)
	if err == nil {
		return nil, fmt.Errorf("%w: %s is already on repetition %d", repetition.ErrAlreadyOnRepetition, req.RecordName, existing.ID)
	}
	if !errors.Is(err, idb.ErrRuleNotFound) {
		return nil, fmt.Errorf("failed to check existing repetition: %w", err)
	}

	rule.Schedule(today)
	if err := s.rules.Create(ctx, rule); err != nil {
		if errors.Is(err, idb.ErrDuplicateRule) {
			return nil, fmt.Errorf("%w: %s", repetition.ErrAlreadyOnRepetition, req.RecordName)
		}
		return nil, fmt.Errorf("failed to create repetition: %w", err)
	}

	log.WithFields(logrus.Fields{
		"repetition_id": rule.ID,
		"next_due_date": rule.NextDueDate.Format(repetition.DateLayout),
		"status":        rule.Status,
	}).Info("Repetition created")
	return rule, nil
}

// StopRepetition deletes a rule. Clones it already produced are kept.
func (s *RepetitionService) StopRepetition(ctx context.Context, id int64) (*repetition.Rule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.rules.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("failed to delete repetition: %w", err)
	}
	s.logger.WithField("repetition_id", id).Info("Repetition stopped")
	return rule, nil
}

func (s *RepetitionService) GetRepetition(ctx context.Context, id int64) (*repetition.Rule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *RepetitionService) ListRepetitions(ctx context.Context) ([]*repetition.Rule, error) {
	return s.rules.List(ctx)
}

// ListClones returns the records a rule has produced, oldest due date first.
func (s *RepetitionService) ListClones(ctx context.Context, id int64) ([]*record.Record, error) {
	if _, err := s.rules.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.records.ListByRepetition(ctx, id)
}

// DueRepetitions returns the active rules due on or before asOf.
func (s *RepetitionService) DueRepetitions(ctx context.Context, asOf time.Time) ([]*repetition.Rule, error) {
	rules, err := s.rules.ListDue(ctx, repetition.DateOf(asOf))
	if err != nil {
		return nil, fmt.Errorf("failed to list due repetitions: %w", err)
	}
	return rules, nil
}

func (s *RepetitionService) ListDue(ctx context.Context, asOf time.Time) ([]int64, error) {
	rules, err := s.DueRepetitions(ctx, asOf)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(rules))
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// ProcessDue clones the source record of every rule due on or before asOf and
// advances each schedule past asOf. A failing rule is logged and left due so
// the next run retries it; it does not stop the others. asOf may not be later
// than today.
func (s *RepetitionService) ProcessDue(ctx context.Context, asOf time.Time) (RunReport, error) {
	asOf = repetition.DateOf(asOf)
	report := RunReport{AsOf: asOf}
	if asOf.After(s.Today()) {
		return report, fmt.Errorf("%w: %s", repetition.ErrRunDateInFuture, asOf.Format(repetition.DateLayout))
	}

	rules, err := s.DueRepetitions(ctx, asOf)
	if err != nil {
		return report, err
	}
	report.Due = len(rules)
	s.logger.WithField("as_of", asOf.Format(repetition.DateLayout)).Infof("Found %d due repetitions", len(rules))

	for _, rule := range rules {
		if err := s.processRule(ctx, rule, asOf, &report); err != nil {
			return report, err
		}
	}

	s.logger.Info(report.String())
	s.notify(report)
	return report, nil
}

// processRule produces clones for a rule until it is no longer due on asOf.
// Catching up can land exactly on asOf, which then needs a clone of its own.
func (s *RepetitionService) processRule(ctx context.Context, rule *repetition.Rule, asOf time.Time, report *RunReport) error {
	for rule.IsDue(asOf) {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := s.logger.WithFields(logrus.Fields{
			"repetition_id": rule.ID,
			"record_type":   rule.RecordType,
			"record_name":   rule.RecordName,
			"due_date":      rule.NextDueDate.Format(repetition.DateLayout),
		})

		clone, err := s.produceClone(ctx, rule)
		switch {
		case errors.Is(err, idb.ErrDuplicateClone):
			log.Warn("Clone for this due date already exists, advancing schedule")
			report.AlreadyCloned++
		case err != nil:
			log.WithError(err).Error("Repetition failed")
			report.Failed++
			return nil
		default:
			log.WithField("clone_name", clone.Name).Info("Clone created")
			report.Cloned++
		}

		previous := rule.NextDueDate
		if !rule.Advance(asOf) {
			report.Completed++
			log.Info("Repetition reached its end date")
		}
		if err := s.rules.UpdateSchedule(ctx, rule); err != nil {
			log.WithError(err).Error("Failed to persist next due date")
			report.Failed++
			return nil
		}
		if !rule.NextDueDate.After(previous) {
			return nil
		}
	}
	return nil
}

func (s *RepetitionService) produceClone(ctx context.Context, rule *repetition.Rule) (*record.Record, error) {
	plan, ok := s.plans[rule.RecordType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", repetition.ErrRecordTypeNotRepeatable, rule.RecordType)
	}
	src, err := s.records.GetByName(ctx, rule.RecordType, rule.RecordName)
	if err != nil {
		return nil, fmt.Errorf("failed to load source record: %w", err)
	}
	clone := plan.Clone(src, rule.ID, rule.NextDueDate)
	if err := s.records.CreateClone(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}

func (s *RepetitionService) notify(report RunReport) {
	if s.notifier == nil || report.Due == 0 {
		return
	}
	if err := s.notifier.SendMessage(s.adminChatID, report.String()); err != nil {
		s.logger.WithError(err).Warn("Failed to send run report")
	}
}
