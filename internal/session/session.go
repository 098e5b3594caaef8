// Package session holds the mutable calculator state owned by a caller (a
// terminal session or a live websocket connection). Every mutation recomputes
// the allocation from scratch and notifies the listener.
package session

import (
	"sync"

	"github.com/yourusername/flat-stake/internal/allocator"
	"github.com/yourusername/flat-stake/internal/input"
	"github.com/yourusername/flat-stake/internal/logger"
	"github.com/yourusername/flat-stake/internal/metrics"
	"github.com/yourusername/flat-stake/internal/models"
)

// Operation names used for logging and metrics
const (
	OpSetBudget     = "set_budget"
	OpAddOutcome    = "add_outcome"
	OpRemoveOutcome = "remove_outcome"
	OpUpdateOdds    = "update_odds"
	OpUpdateLabel   = "update_label"
	OpReset         = "reset"
)

// Allocator computes an allocation for a snapshot
type Allocator interface {
	AllocateState(state models.State) (*allocator.Allocation, error)
}

// Update is the state after a mutation together with its recomputed allocation.
// Err is models.ErrNoResult when there is nothing to show.
type Update struct {
	Operation string
	State     models.State
	Result    *allocator.Allocation
	Err       error
}

// HasResult reports whether the update carries an allocation to display
func (u Update) HasResult() bool {
	return u.Err == nil && u.Result != nil
}

// Listener is called synchronously after every mutation. It runs while the
// session is locked and must not call back into the session.
type Listener func(Update)

// Options configures a new session
type Options struct {
	// Initial state; nil means the default two-runner example
	Initial *models.State
	// Budget restored by Reset; models.DefaultBudget when not positive
	DefaultBudget int64
	Allocator     Allocator
	Listener      Listener
	Logger        *logger.SessionLogger
}

// Session is a calculator session. It is safe for concurrent use.
type Session struct {
	mu            sync.Mutex
	budget        int64
	outcomes      []models.Outcome
	defaultBudget int64
	allocator     Allocator
	listener      Listener
	log           *logger.SessionLogger
}

// New creates a session
func New(opts Options) *Session {
	s := &Session{
		defaultBudget: opts.DefaultBudget,
		allocator:     opts.Allocator,
		listener:      opts.Listener,
		log:           opts.Logger,
	}
	if s.defaultBudget <= 0 {
		s.defaultBudget = models.DefaultBudget
	}
	if s.allocator == nil {
		s.allocator = allocator.Default()
	}
	if s.log == nil {
		s.log = logger.NewSessionLogger(logger.Discard(), "")
	}

	if opts.Initial != nil {
		initial := opts.Initial.Clone()
		s.budget = initial.Budget
		s.outcomes = initial.Outcomes
	} else {
		s.budget = s.defaultBudget
		s.outcomes = []models.Outcome{
			{ID: 1, Label: 1, Odds: 2.5},
			{ID: 2, Label: 2, Odds: 5.0},
		}
	}
	return s
}

// Snapshot returns an immutable copy of the current state
func (s *Session) Snapshot() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Result recomputes the allocation for the current state without mutating it
func (s *Session) Result() Update {
	state := s.Snapshot()
	result, err := s.allocator.AllocateState(state)
	return Update{State: state, Result: result, Err: err}
}

// SetBudget replaces the budget
func (s *Session) SetBudget(budget int64) Update {
	return s.mutate(OpSetBudget, 0, func() error {
		s.budget = budget
		return nil
	})
}

// SetBudgetText coerces raw input into a budget; invalid text becomes 0
func (s *Session) SetBudgetText(text string) Update {
	return s.SetBudget(input.ParseBudget(text))
}

// AddOutcome appends an outcome with the next unused id, a label one greater
// than the last outcome's, and zero odds.
func (s *Session) AddOutcome() (models.Outcome, Update) {
	var added models.Outcome
	update := s.mutate(OpAddOutcome, 0, func() error {
		maxID, lastLabel := 0, 0
		for _, o := range s.outcomes {
			if o.ID > maxID {
				maxID = o.ID
			}
		}
		if n := len(s.outcomes); n > 0 {
			lastLabel = s.outcomes[n-1].Label
		}
		added = models.Outcome{ID: maxID + 1, Label: lastLabel + 1, Odds: 0}
		s.outcomes = append(s.outcomes, added)
		return nil
	})
	return added, update
}

// RemoveOutcome deletes the outcome with the given id
func (s *Session) RemoveOutcome(id int) (Update, error) {
	return s.mutateOutcome(OpRemoveOutcome, id, func(i int) {
		s.outcomes = append(s.outcomes[:i:i], s.outcomes[i+1:]...)
	})
}

// UpdateOdds sets the odds of an outcome
func (s *Session) UpdateOdds(id int, odds float64) (Update, error) {
	return s.mutateOutcome(OpUpdateOdds, id, func(i int) {
		s.outcomes[i].Odds = odds
	})
}

// UpdateOddsText coerces raw input into odds; invalid text makes the outcome ineligible
func (s *Session) UpdateOddsText(id int, text string) (Update, error) {
	return s.UpdateOdds(id, input.ParseOdds(text))
}

// UpdateLabel sets the display number of an outcome
func (s *Session) UpdateLabel(id, label int) (Update, error) {
	return s.mutateOutcome(OpUpdateLabel, id, func(i int) {
		s.outcomes[i].Label = label
	})
}

// Reset restores the default budget and a single outcome without odds.
// Asking the user for confirmation is the caller's job.
func (s *Session) Reset() Update {
	return s.mutate(OpReset, 0, func() error {
		s.budget = s.defaultBudget
		s.outcomes = []models.Outcome{{ID: 1, Label: 1, Odds: 0}}
		return nil
	})
}

func (s *Session) mutateOutcome(op string, id int, apply func(i int)) (Update, error) {
	var err error
	update := s.mutate(op, id, func() error {
		for i := range s.outcomes {
			if s.outcomes[i].ID == id {
				apply(i)
				return nil
			}
		}
		err = models.ErrOutcomeNotFound
		return err
	})
	if err != nil {
		return Update{}, err
	}
	return update, nil
}

// mutate applies change, recomputes and notifies, all under the lock so
// listeners see updates in mutation order.
func (s *Session) mutate(op string, outcomeID int, change func() error) Update {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := change(); err != nil {
		s.log.LogRejected(op, err)
		return Update{}
	}
	state := s.snapshotLocked()

	metrics.RecordSessionMutation(op)
	s.log.LogMutation(op, outcomeID, state.Budget, len(state.Outcomes))

	result, err := s.allocator.AllocateState(state)
	update := Update{Operation: op, State: state, Result: result, Err: err}
	if s.listener != nil {
		s.listener(update)
	}
	return update
}

func (s *Session) snapshotLocked() models.State {
	return models.State{Budget: s.budget, Outcomes: s.outcomes}.Clone()
}
