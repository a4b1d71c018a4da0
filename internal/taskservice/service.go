// Package taskservice runs the task lifecycle commands and queries. Every command is
// validated and applied inside one store transaction, and change notifications are
// published only after the transaction commits.
package taskservice

import (
	"context"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/rules"
	"github.com/starford/raido/internal/store"
)

// Notifier receives committed changes, e.g. Notify("task.updated", 7).
type Notifier interface {
	Notify(event string, id int64)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, int64) {}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLocation sets the time zone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithStructurePolicy replaces the convergence structure rule.
func WithStructurePolicy(p rules.StructurePolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithNotifier sets the receiver of change notifications.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithBlockOpenChecklist makes Complete fail while checklist items are still open.
func WithBlockOpenChecklist(block bool) Option {
	return func(s *Service) { s.blockOpenChecklist = block }
}

// Service coordinates the rule engine with the task store.
type Service struct {
	db                 *store.DB
	now                func() time.Time
	loc                *time.Location
	policy             rules.StructurePolicy
	notifier           Notifier
	blockOpenChecklist bool
}

// NewService creates a new task service.
func NewService(db *store.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		now:      time.Now,
		loc:      time.Local,
		policy:   rules.MaxChildren(rules.DefaultStructureMaxChildren),
		notifier: nopNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar day in the service's time zone.
func (s *Service) Today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

type change struct {
	event string
	id    int64
}

// changes collects the notifications of one command.
type changes []change

func (c *changes) add(event string, id int64) {
	*c = append(*c, change{event: event, id: id})
}

// update runs fn in a write transaction and publishes its changes after commit.
func (s *Service) update(ctx context.Context, fn func(r store.Repository, c *changes) error) error {
	var c changes
	err := s.db.Update(ctx, func(r store.Repository) error {
		c = c[:0]
		return fn(r, &c)
	})
	if err != nil {
		return err
	}
	for _, ch := range c {
		s.notifier.Notify(ch.event, ch.id)
	}
	return nil
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return apperr.Validation("%v", err)
}

func checkVersion(t models.Task, ifVersion *int64) error {
	if ifVersion != nil && *ifVersion != t.Version {
		return apperr.Conflict("task %d is at version %d, not %d", t.ID, t.Version, *ifVersion)
	}
	return nil
}

func parentLookup(ctx context.Context, r store.Repository) rules.ParentLookup {
	return func(id int64) (*int64, bool, error) {
		return r.ParentOf(ctx, id)
	}
}

func nonBlank(s *string) *string {
	if s == nil {
		return nil
	}
	if strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
