package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"botdash/internal/domain"
	"botdash/internal/filter"
)

// signalWindow bounds how many recent signals a list request scans
const signalWindow = 1000

// SignalService serves the signal log
type SignalService struct {
	signals  domain.SignalRepository
	accounts domain.AccountRepository
	notifier domain.Notifier
	log      *logrus.Entry
	now      func() time.Time
}

// NewSignalService creates a new SignalService. notifier may be nil.
func NewSignalService(
	signals domain.SignalRepository,
	accounts domain.AccountRepository,
	notifier domain.Notifier,
	log *logrus.Entry,
) *SignalService {
	return &SignalService{
		signals:  signals,
		accounts: accounts,
		notifier: notifier,
		log:      log.WithField("component", "signals"),
		now:      time.Now,
	}
}

// SignalQuery holds list filters
type SignalQuery struct {
	Source     string
	Action     string
	Instrument string
	Outcome    string
	Search     string
	Sort       string
	Dir        string
	Page       int
	PerPage    int
}

// SignalInput is a signal reported by a signal source
type SignalInput struct {
	Source     string                 `json:"source"`
	Action     string                 `json:"action"`
	Instrument string                 `json:"instrument"`
	BotID      *uuid.UUID             `json:"bot_id,omitempty"`
	Message    string                 `json:"message"`
	Timestamp  *time.Time             `json:"timestamp,omitempty"`
	Outcomes   []domain.SignalOutcome `json:"outcomes"`
}

// SignalSummary counts signals and outcomes in a list
type SignalSummary struct {
	Signals   int `json:"signals"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

var signalSortKeys = filter.Keys[*domain.Signal]{
	"timestamp":  filter.ByTime(func(s *domain.Signal) time.Time { return s.Timestamp }),
	"instrument": filter.ByString(func(s *domain.Signal) string { return s.Instrument }),
	"action":     filter.ByString(func(s *domain.Signal) string { return s.Action }),
	"source":     filter.ByString(func(s *domain.Signal) string { return s.Source }),
}

// List returns recent signals matching q. Non-admins only see outcomes for
// their own accounts.
func (s *SignalService) List(ctx context.Context, user *domain.User, q SignalQuery) ([]*domain.Signal, filter.PageInfo, SignalSummary, error) {
	signals, err := s.signals.GetRecent(ctx, q.Source, signalWindow)
	if err != nil {
		return nil, filter.PageInfo{}, SignalSummary{}, fmt.Errorf("failed to list signals: %w", err)
	}

	if err := s.scopeOutcomes(ctx, user, signals); err != nil {
		return nil, filter.PageInfo{}, SignalSummary{}, err
	}

	signals = filter.Apply(signals,
		filter.Equals(q.Source, func(s *domain.Signal) string { return s.Source }),
		filter.Equals(q.Action, func(s *domain.Signal) string { return s.Action }),
		filter.Equals(strings.ToUpper(q.Instrument), func(s *domain.Signal) string { return strings.ToUpper(s.Instrument) }),
		outcomePredicate(q.Outcome),
		filter.Search(q.Search, func(s *domain.Signal) []string { return []string{s.Instrument, s.Message} }),
	)

	sortField := q.Sort
	dir := filter.ParseDirection(q.Dir)
	if sortField == "" {
		sortField, dir = "timestamp", filter.Desc
	}
	signals = filter.Sort(signals, sortField, dir, signalSortKeys)

	summary := SignalSummary{Signals: len(signals)}
	for _, sig := range signals {
		p, f := sig.Counts()
		summary.Processed += p
		summary.Failed += f
	}

	page, info := filter.Paginate(signals, q.Page, q.PerPage)
	return page, info, summary, nil
}

// Get returns one signal
func (s *SignalService) Get(ctx context.Context, user *domain.User, id uuid.UUID) (*domain.Signal, error) {
	signal, err := s.signals.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.scopeOutcomes(ctx, user, []*domain.Signal{signal}); err != nil {
		return nil, err
	}
	return signal, nil
}

// Record stores a signal reported by a source. Admin only.
func (s *SignalService) Record(ctx context.Context, user *domain.User, in SignalInput) (*domain.Signal, error) {
	if !user.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	if !domain.ValidSource(in.Source) {
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrInvalid, in.Source)
	}
	if !domain.ValidAction(in.Action) {
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrInvalid, in.Action)
	}
	if strings.TrimSpace(in.Instrument) == "" {
		return nil, fmt.Errorf("%w: instrument is required", domain.ErrInvalid)
	}

	now := s.now()
	signal := &domain.Signal{
		ID:         uuid.New(),
		Source:     in.Source,
		Action:     in.Action,
		Instrument: strings.TrimSpace(in.Instrument),
		BotID:      in.BotID,
		Message:    in.Message,
		Timestamp:  now,
		Outcomes:   make([]domain.SignalOutcome, 0, len(in.Outcomes)),
	}
	if in.Timestamp != nil {
		signal.Timestamp = *in.Timestamp
	}
	for i, o := range in.Outcomes {
		if o.AccountID == "" {
			return nil, fmt.Errorf("%w: outcome %d has no account_id", domain.ErrInvalid, i)
		}
		if o.Status != domain.OutcomeProcessed && o.Status != domain.OutcomeFailed {
			return nil, fmt.Errorf("%w: outcome %d has unknown status %q", domain.ErrInvalid, i, o.Status)
		}
		if o.ProcessedAt.IsZero() {
			o.ProcessedAt = now
		}
		signal.Outcomes = append(signal.Outcomes, o)
	}

	if err := s.signals.Save(ctx, signal); err != nil {
		return nil, err
	}

	_, failed := signal.Counts()
	entry := s.log.WithFields(logrus.Fields{
		"signal_id":  signal.ID,
		"source":     signal.Source,
		"action":     signal.Action,
		"instrument": signal.Instrument,
		"failed":     failed,
	})
	if failed > 0 {
		entry.Warn("Signal recorded with failed outcomes")
		if s.notifier != nil {
			if err := s.notifier.SendSignalFailures(*signal); err != nil {
				entry.WithError(err).Error("Failed to send signal failure notification")
			}
		}
	} else {
		entry.Info("Signal recorded")
	}

	return signal, nil
}

// Prune removes signals older than the retention window
func (s *SignalService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	n, err := s.signals.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"removed": n, "cutoff": cutoff.Format(time.RFC3339)}).Info("Signal log pruned")
	return n, nil
}

func outcomePredicate(status string) filter.Predicate[*domain.Signal] {
	if status == "" {
		return nil
	}
	return func(sig *domain.Signal) bool {
		for _, o := range sig.Outcomes {
			if o.Status == status {
				return true
			}
		}
		return false
	}
}

func (s *SignalService) scopeOutcomes(ctx context.Context, user *domain.User, signals []*domain.Signal) error {
	if user.IsAdmin() {
		return nil
	}

	accounts, err := s.accounts.GetByUserID(ctx, user.ID.String())
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	// Trading account ids are chosen by users and not unique, so only the
	// primary key identifies an owned account
	owned := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		owned[a.ID.String()] = struct{}{}
	}

	for _, sig := range signals {
		sig.Outcomes = filter.Apply(sig.Outcomes, func(o domain.SignalOutcome) bool {
			_, ok := owned[o.AccountID]
			return ok
		})
	}
	return nil
}
