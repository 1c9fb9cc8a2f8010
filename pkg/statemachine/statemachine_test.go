package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thefiredev-cloud/vortis/pkg/statemachine"
)

type (
	status string
	event  string
)

const (
	none     status = ""
	active   status = "active"
	pastDue  status = "past_due"
	canceled status = "canceled"

	checkout event = "checkout"
	failed   event = "payment_failed"
	paid     event = "payment_succeeded"
	updated  event = "updated"
	deleted  event = "deleted"
)

func billingMachine(t *testing.T) *statemachine.Machine[status, event] {
	t.Helper()
	providerStatus := func(data any) status {
		s, _ := data.(status)
		return s
	}
	m, err := statemachine.NewBuilder[status, event]().
		From(none, active, pastDue, canceled).When(checkout).To(active).Add().
		From(active, pastDue).When(failed).To(pastDue).Add().
		From(active, pastDue).When(paid).To(active).Add().
		From(active, pastDue).When(updated).ToFunc(providerStatus).Add().
		From(active, pastDue, canceled).When(deleted).To(canceled).Add().
		Build()
	require.NoError(t, err)
	return m
}

func TestMachineNext(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := billingMachine(t)

	tests := []struct {
		name  string
		from  status
		event event
		data  any
		want  status
	}{
		{name: "first checkout", from: none, event: checkout, want: active},
		{name: "checkout revives canceled", from: canceled, event: checkout, want: active},
		{name: "payment failure", from: active, event: failed, want: pastDue},
		{name: "recovery", from: pastDue, event: paid, want: active},
		{name: "provider status", from: active, event: updated, data: status("trialing"), want: "trialing"},
		{name: "delete is idempotent", from: canceled, event: deleted, want: canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := m.Next(ctx, tt.from, tt.event, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("undefined transition", func(t *testing.T) {
		t.Parallel()
		got, err := m.Next(ctx, canceled, paid, nil)
		require.Error(t, err)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.False(t, statemachine.IsTransitionRejectedError(err))
		assert.Equal(t, canceled, got)
		assert.False(t, m.Can(ctx, canceled, paid, nil))
	})
}

func TestMachineGuards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	onlyOwner := func(_ context.Context, _ status, _ event, data any) bool {
		return data == "owner"
	}
	m := statemachine.NewBuilder[status, event]().
		From(active).When(deleted).To(canceled).WithGuard(onlyOwner).Add().
		MustBuild()

	_, err := m.Next(ctx, active, deleted, "guest")
	assert.True(t, statemachine.IsTransitionRejectedError(err))
	assert.False(t, m.Can(ctx, active, deleted, "guest"))

	got, err := m.Next(ctx, active, deleted, "owner")
	require.NoError(t, err)
	assert.Equal(t, canceled, got)
}

func TestMachineFirstPassingTransitionWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	isRetry := func(_ context.Context, _ status, _ event, data any) bool { return data == "retry" }
	m := statemachine.NewBuilder[status, event]().
		From(pastDue).When(failed).To(canceled).WithGuard(isRetry).Add().
		From(pastDue).When(failed).To(pastDue).Add().
		MustBuild()

	got, err := m.Next(ctx, pastDue, failed, "retry")
	require.NoError(t, err)
	assert.Equal(t, canceled, got)

	got, err = m.Next(ctx, pastDue, failed, nil)
	require.NoError(t, err)
	assert.Equal(t, pastDue, got)
}

func TestMachineActions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var seen []string
	record := func(_ context.Context, from, to status, e event, _ any) error {
		seen = append(seen, string(from)+">"+string(to)+":"+string(e))
		return nil
	}
	boom := errors.New("boom")
	fail := func(context.Context, status, status, event, any) error { return boom }

	m := statemachine.NewBuilder[status, event]().
		From(active).When(failed).To(pastDue).WithAction(record).Add().
		From(pastDue).When(paid).To(active).WithAction(fail).Add().
		MustBuild()

	got, err := m.Next(ctx, active, failed, nil)
	require.NoError(t, err)
	assert.Equal(t, pastDue, got)
	assert.Equal(t, []string{"active>past_due:payment_failed"}, seen)

	got, err = m.Next(ctx, pastDue, paid, nil)
	assert.ErrorIs(t, err, statemachine.ErrActionFailed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, pastDue, got)

	assert.True(t, m.Can(ctx, pastDue, paid, nil))
}

func TestBuilderErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.NewBuilder[status, event]().When(paid).To(active).Add().Build()
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("missing target", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.NewBuilder[status, event]().From(active).When(paid).Add().Build()
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("missing event", func(t *testing.T) {
		t.Parallel()
		_, err := statemachine.New(statemachine.Transition[status, event]{From: active, To: canceled})
		assert.ErrorIs(t, err, statemachine.ErrInvalidTransition)
	})

	t.Run("must build panics", func(t *testing.T) {
		t.Parallel()
		assert.Panics(t, func() {
			statemachine.NewBuilder[status, event]().From(active).Add().MustBuild()
		})
	})
}

func TestMachineEvents(t *testing.T) {
	t.Parallel()
	m := billingMachine(t)
	assert.Equal(t, []event{checkout, deleted, failed, paid, updated}, m.Events(active))
	assert.Equal(t, []event{checkout, deleted}, m.Events(canceled))
	assert.Empty(t, m.Events("unknown"))
}
