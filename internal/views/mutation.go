package views

import (
	"context"
	"errors"
	"sync"
)

// ErrMutationPending is returned when a submission is already in flight
var ErrMutationPending = errors.New("a request is already in progress")

// MutationState is the lifecycle of one form submission
type MutationState int

const (
	Idle MutationState = iota
	Pending
	Succeeded
	Failed
)

func (s MutationState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "success"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// Notifier shows the outcome of a mutation to the user
type Notifier interface {
	Success(message string)
	Failure(err error)
}

// Mutation drives idle → pending → success | error for a form submission.
// Nothing is retried automatically.
type Mutation struct {
	mu       sync.Mutex
	state    MutationState
	err      error
	notifier Notifier
}

// NewMutation creates an idle mutation reporting to notifier (may be nil)
func NewMutation(notifier Notifier) *Mutation {
	return &Mutation{notifier: notifier}
}

// Run submits through fn. successMessage is shown when fn succeeds.
func (m *Mutation) Run(ctx context.Context, successMessage string, fn func(context.Context) error) error {
	m.mu.Lock()
	if m.state == Pending {
		m.mu.Unlock()
		return ErrMutationPending
	}
	m.state = Pending
	m.err = nil
	m.mu.Unlock()

	err := fn(ctx)

	m.mu.Lock()
	if err != nil {
		m.state = Failed
		m.err = err
	} else {
		m.state = Succeeded
	}
	notifier := m.notifier
	m.mu.Unlock()

	if notifier != nil {
		if err != nil {
			notifier.Failure(err)
		} else {
			notifier.Success(successMessage)
		}
	}
	return err
}

// State returns the current state
func (m *Mutation) State() MutationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Err returns the error of a failed submission
func (m *Mutation) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}
