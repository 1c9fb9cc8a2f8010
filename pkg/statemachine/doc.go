// Package statemachine provides a generic transition table for state that
// lives outside the process, typically a status column in a database row.
//
// A Machine holds no current state. Callers load the stored state, ask the
// machine where an event leads and persist the result:
//
//	type Status string
//	type Event string
//
//	m := statemachine.NewBuilder[Status, Event]().
//	    From("trialing", "active").When("payment_failed").To("past_due").Add().
//	    From("past_due").When("payment_succeeded").To("active").Add().
//	    MustBuild()
//
//	next, err := m.Next(ctx, row.Status, "payment_failed", nil)
//
// Several transitions may share a source state and event. They are tried in
// the order they were added and the first one whose guards all pass wins.
// A transition may compute its target from the event data with ToFunc.
//
// Next distinguishes "no transition defined" from "every candidate rejected
// by guards"; use IsNoTransitionAvailableError and IsTransitionRejectedError
// to tell them apart.
//
// A built Machine is immutable and safe for concurrent use.
package statemachine
