package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func at(hour int) *time.Time {
	t := time.Date(2025, 3, 14, hour, 0, 0, 0, time.UTC)
	return &t
}

func states(tl services.Timeline) []services.MilestoneState {
	out := make([]services.MilestoneState, 0, len(tl.Milestones))
	for _, m := range tl.Milestones {
		out = append(out, m.State)
	}
	return out
}

func TestBuildTimeline_States(t *testing.T) {
	c, cur, up := services.MilestoneCompleted, services.MilestoneCurrent, services.MilestoneUpcoming

	tests := []struct {
		name     string
		snapshot services.DeliverySnapshot
		want     []services.MilestoneState
	}{
		{
			name:     "no timestamps",
			snapshot: services.DeliverySnapshot{},
			want:     []services.MilestoneState{c, cur, up, up},
		},
		{
			name:     "received only",
			snapshot: services.DeliverySnapshot{InfoReceivedAt: at(8)},
			want:     []services.MilestoneState{c, cur, up, up},
		},
		{
			name:     "scheduled",
			snapshot: services.DeliverySnapshot{InfoReceivedAt: at(8), ScheduledAt: at(9)},
			want:     []services.MilestoneState{c, c, cur, up},
		},
		{
			name:     "out for delivery without schedule timestamp",
			snapshot: services.DeliverySnapshot{InfoReceivedAt: at(8), OutForDeliveryAt: at(10)},
			want:     []services.MilestoneState{c, c, c, cur},
		},
		{
			name:     "delivered",
			snapshot: services.DeliverySnapshot{InfoReceivedAt: at(8), ScheduledAt: at(9), OutForDeliveryAt: at(10), DeliveredAt: at(11)},
			want:     []services.MilestoneState{c, c, c, c},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := services.BuildTimeline(tt.snapshot, now)

			assert.Equal(t, tt.want, states(tl))
			assert.Equal(t, now, tl.LastUpdated)
		})
	}
}

func TestBuildTimeline_CarriesProviderStatus(t *testing.T) {
	tl := services.BuildTimeline(services.DeliverySnapshot{
		Status:           "in_progress",
		TrackingStatus:   "Out for delivery",
		InfoReceivedAt:   at(8),
		OutForDeliveryAt: at(10),
	}, now)

	require.Len(t, tl.Milestones, 4)
	assert.Equal(t, "in_progress", tl.Status)
	assert.Equal(t, "Out for delivery", tl.TrackingStatus)
	assert.Equal(t, services.MilestoneOutForDelivery, tl.Milestones[2].Title)
	assert.Equal(t, *at(10), *tl.Milestones[2].Timestamp)
	assert.Nil(t, tl.Milestones[1].Timestamp)
}

func TestBuildTimeline_DefaultsStatus(t *testing.T) {
	tl := services.BuildTimeline(services.DeliverySnapshot{InfoReceivedAt: at(8), ScheduledAt: at(9)}, now)

	assert.Equal(t, "processing", tl.Status)
	assert.Equal(t, services.MilestonePreparing, tl.TrackingStatus)
}

func TestPlaceholderTimeline(t *testing.T) {
	received := time.Date(2025, 3, 14, 7, 0, 0, 0, time.UTC)

	tl := services.PlaceholderTimeline(received, now)

	assert.Equal(t, services.PlaceholderStatus, tl.Status)
	assert.Equal(t, services.PlaceholderTrackingStatus, tl.TrackingStatus)
	require.Len(t, tl.Milestones, 4)
	assert.Equal(t, services.MilestoneOrderReceived, tl.Milestones[0].Title)
	assert.Equal(t, received, *tl.Milestones[0].Timestamp)
	assert.Equal(t, []services.MilestoneState{
		services.MilestoneCompleted, services.MilestoneCurrent, services.MilestoneUpcoming, services.MilestoneUpcoming,
	}, states(tl))
}
