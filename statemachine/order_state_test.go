package statemachine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deliveryfood/models"
)

func TestNext(t *testing.T) {
	tests := []struct {
		from   models.OrderStatus
		want   models.OrderStatus
		wantOK bool
	}{
		{models.StatusPending, models.StatusAssigned, true},
		{models.StatusAssigned, models.StatusPickedUp, true},
		{models.StatusPickedUp, models.StatusOnDelivery, true},
		{models.StatusOnDelivery, models.StatusDelivered, true},
		{models.StatusDelivered, "", false},
		{"COMPLETED", "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			got, ok := Next(tt.from)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_ReachesDeliveredMonotonically(t *testing.T) {
	s := models.StatusAssigned
	steps := 0
	for {
		next, ok := Next(s)
		if !ok {
			break
		}
		require.Greater(t, Index(next), Index(s))
		s = next
		steps++
		require.Less(t, steps, len(Lifecycle))
	}
	assert.Equal(t, models.StatusDelivered, s)
	assert.True(t, IsTerminal(s))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   Actor
		wantErr bool
	}{
		{"admin assigns pending", models.StatusPending, models.StatusAssigned, ActorAdmin, false},
		{"courier cannot assign", models.StatusPending, models.StatusAssigned, ActorCourier, true},
		{"courier picks up", models.StatusAssigned, models.StatusPickedUp, ActorCourier, false},
		{"courier skips ahead", models.StatusAssigned, models.StatusDelivered, ActorCourier, true},
		{"courier goes backwards", models.StatusOnDelivery, models.StatusPickedUp, ActorCourier, true},
		{"nothing leaves delivered", models.StatusDelivered, models.StatusPending, ActorAdmin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to, tt.actor)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanTransition_ErrorListsValidTargets(t *testing.T) {
	err := CanTransition(models.StatusDelivered, models.StatusPending, ActorCourier)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none (terminal state)")

	err = CanTransition(models.StatusAssigned, models.StatusDelivered, ActorCourier)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PICKED_UP")
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(models.StatusPending))
	assert.Equal(t, 50, Progress(models.StatusPickedUp))
	assert.Equal(t, 100, Progress(models.StatusDelivered))
	assert.Equal(t, 0, Progress("UNKNOWN"))
}
