package statemachine

import (
	"context"
	"errors"
	"slices"
)

// Guard vetoes a transition based on runtime data.
type Guard[S, E ~string] func(ctx context.Context, from S, event E, data any) bool

// Action runs after the guards pass and before the caller persists the new
// state. Returning an error aborts the transition.
type Action[S, E ~string] func(ctx context.Context, from, to S, event E, data any) error

// Transition moves From to To when Event fires. When Target is set it
// replaces To and may pick the destination from the event data.
type Transition[S, E ~string] struct {
	From    S
	To      S
	Target  func(data any) S
	Event   E
	Guards  []Guard[S, E]
	Actions []Action[S, E]
}

func (t *Transition[S, E]) destination(data any) S {
	if t.Target != nil {
		return t.Target(data)
	}
	return t.To
}

func (t *Transition[S, E]) allowed(ctx context.Context, from S, event E, data any) bool {
	for _, guard := range t.Guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}

// Machine is an immutable transition table. Lookups are
// map[from][event][]Transition.
type Machine[S, E ~string] struct {
	transitions map[S]map[E][]Transition[S, E]
}

// New builds a Machine from a list of transitions.
func New[S, E ~string](transitions ...Transition[S, E]) (*Machine[S, E], error) {
	m := &Machine[S, E]{transitions: make(map[S]map[E][]Transition[S, E])}
	for _, t := range transitions {
		if err := m.add(t); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Machine[S, E]) add(t Transition[S, E]) error {
	if t.Event == "" || (t.To == "" && t.Target == nil) {
		return ErrInvalidTransition
	}
	if _, ok := m.transitions[t.From]; !ok {
		m.transitions[t.From] = make(map[E][]Transition[S, E])
	}
	m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
	return nil
}

// Next returns the state that event leads to from the given state, running
// the actions of the selected transition.
func (m *Machine[S, E]) Next(ctx context.Context, from S, event E, data any) (S, error) {
	t, err := m.match(ctx, from, event, data)
	if err != nil {
		return from, err
	}

	to := t.destination(data)
	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, from, to, event, data); err != nil {
			return from, errors.Join(ErrActionFailed, err)
		}
	}
	return to, nil
}

// Can reports whether event is accepted from the given state. Actions are
// not run.
func (m *Machine[S, E]) Can(ctx context.Context, from S, event E, data any) bool {
	_, err := m.match(ctx, from, event, data)
	return err == nil
}

// Events lists the events with at least one transition out of from, sorted.
func (m *Machine[S, E]) Events(from S) []E {
	events := make([]E, 0, len(m.transitions[from]))
	for e := range m.transitions[from] {
		events = append(events, e)
	}
	slices.Sort(events)
	return events
}

func (m *Machine[S, E]) match(ctx context.Context, from S, event E, data any) (*Transition[S, E], error) {
	candidates := m.transitions[from][event]
	if len(candidates) == 0 {
		return nil, &ErrNoTransitionAvailable{StateName: string(from), EventName: string(event)}
	}
	for i := range candidates {
		if candidates[i].allowed(ctx, from, event, data) {
			return &candidates[i], nil
		}
	}
	return nil, &ErrTransitionRejected{StateName: string(from), EventName: string(event)}
}
