package browser

import (
	"fmt"
	"sync"
)

// State - состояние сессии браузера.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateAuthenticated
	StateNavigating
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateNavigating:
		return "navigating"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateUnauthenticated: {StateAuthenticating, StateClosed},
	StateAuthenticating:  {StateAuthenticated, StateUnauthenticated, StateClosed},
	StateAuthenticated:   {StateNavigating, StateClosed},
	StateNavigating:      {StateAuthenticated, StateClosed},
}

type stateMachine struct {
	mu      sync.Mutex
	current State
}

func (m *stateMachine) Current() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Transition переводит машину в состояние to, если переход разрешен.
func (m *stateMachine) Transition(op string, to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == StateClosed {
		return &Error{Kind: KindClosed, Op: op}
	}

	for _, allowed := range transitions[m.current] {
		if allowed == to {
			m.current = to
			return nil
		}
	}

	return &Error{
		Kind: KindInvalidState,
		Op:   op,
		Err:  fmt.Errorf("переход %s -> %s запрещен", m.current, to),
	}
}

// Close переводит машину в конечное состояние из любого другого.
func (m *stateMachine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = StateClosed
}
