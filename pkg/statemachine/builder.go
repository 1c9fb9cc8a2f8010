package statemachine

import "fmt"

// Builder provides a fluent API for building a Machine.
type Builder[S, E ~string] struct {
	transitions []Transition[S, E]
	err         error

	from    []S
	event   E
	to      S
	target  func(data any) S
	guards  []Guard[S, E]
	actions []Action[S, E]
}

// NewBuilder creates an empty builder.
func NewBuilder[S, E ~string]() *Builder[S, E] {
	return &Builder[S, E]{}
}

// From starts a transition out of one or more states. The empty state is a
// valid source and stands for "no stored state yet".
func (b *Builder[S, E]) From(states ...S) *Builder[S, E] {
	b.reset()
	b.from = states
	return b
}

// When sets the event that triggers the transition.
func (b *Builder[S, E]) When(event E) *Builder[S, E] {
	b.event = event
	return b
}

// To sets a fixed target state.
func (b *Builder[S, E]) To(state S) *Builder[S, E] {
	b.to = state
	return b
}

// ToFunc derives the target state from the event data.
func (b *Builder[S, E]) ToFunc(fn func(data any) S) *Builder[S, E] {
	b.target = fn
	return b
}

// WithGuard adds a guard to the current transition.
func (b *Builder[S, E]) WithGuard(guard Guard[S, E]) *Builder[S, E] {
	b.guards = append(b.guards, guard)
	return b
}

// WithAction adds an action to the current transition.
func (b *Builder[S, E]) WithAction(action Action[S, E]) *Builder[S, E] {
	b.actions = append(b.actions, action)
	return b
}

// Add finalizes the current transition, one per source state. The first
// invalid transition is reported by Build.
func (b *Builder[S, E]) Add() *Builder[S, E] {
	if len(b.from) == 0 && b.err == nil {
		b.err = fmt.Errorf("%w: no source state for event %q", ErrInvalidTransition, b.event)
	}
	for _, from := range b.from {
		b.transitions = append(b.transitions, Transition[S, E]{
			From:    from,
			To:      b.to,
			Target:  b.target,
			Event:   b.event,
			Guards:  b.guards,
			Actions: b.actions,
		})
	}
	b.reset()
	return b
}

// Build returns the Machine or the first error met while building.
func (b *Builder[S, E]) Build() (*Machine[S, E], error) {
	if b.err != nil {
		return nil, b.err
	}
	return New(b.transitions...)
}

// MustBuild is Build that panics on error.
func (b *Builder[S, E]) MustBuild() *Machine[S, E] {
	m, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine: %v", err))
	}
	return m
}

func (b *Builder[S, E]) reset() {
	b.from = nil
	b.event = ""
	b.to = ""
	b.target = nil
	b.guards = nil
	b.actions = nil
}
