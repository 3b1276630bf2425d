package services

import (
	"time"
)

// MilestoneState is where a milestone sits relative to the parcel's progress.
type MilestoneState string

const (
	MilestoneCompleted MilestoneState = "completed"
	MilestoneCurrent   MilestoneState = "current"
	MilestoneUpcoming  MilestoneState = "upcoming"
)

const (
	MilestoneOrderReceived  = "Order Received"
	MilestonePreparing      = "Preparing for Shipment"
	MilestoneOutForDelivery = "Out for Delivery"
	MilestoneDelivered      = "Delivered"

	// PlaceholderStatus is reported while no delivery job exists yet.
	PlaceholderStatus         = "tracking_pending"
	PlaceholderTrackingStatus = "Tracking ID Pending"
	placeholderSetupTitle     = "Tracking Setup"
)

type Milestone struct {
	Title       string
	Description string
	State       MilestoneState
	Timestamp   *time.Time
}

// Timeline is the customer-facing tracking view.
type Timeline struct {
	Status         string
	TrackingStatus string
	Milestones     []Milestone
	LastUpdated    time.Time
}

// DeliverySnapshot is what the delivery provider reports about a job.
type DeliverySnapshot struct {
	Status           string
	TrackingStatus   string
	InfoReceivedAt   *time.Time
	ScheduledAt      *time.Time
	OutForDeliveryAt *time.Time
	DeliveredAt      *time.Time
}

// BuildTimeline derives the four fixed milestones from a provider snapshot.
// Every milestone up to the latest one with a timestamp is completed, the next
// one is current and the rest are upcoming. Order Received is always completed
// since a snapshot exists only once the provider has accepted the job.
func BuildTimeline(s DeliverySnapshot, now time.Time) Timeline {
	milestones := []Milestone{
		{Title: MilestoneOrderReceived, Description: "Your order has been received", Timestamp: copyTime(s.InfoReceivedAt)},
		{Title: MilestonePreparing, Description: "Your parcel is being prepared", Timestamp: copyTime(s.ScheduledAt)},
		{Title: MilestoneOutForDelivery, Description: "Your parcel is on its way", Timestamp: copyTime(s.OutForDeliveryAt)},
		{Title: MilestoneDelivered, Description: "Your parcel has been delivered", Timestamp: copyTime(s.DeliveredAt)},
	}

	latest := 0
	for i := len(milestones) - 1; i >= 0; i-- {
		if milestones[i].Timestamp != nil {
			latest = i
			break
		}
	}

	for i := range milestones {
		switch {
		case i <= latest:
			milestones[i].State = MilestoneCompleted
		case i == latest+1:
			milestones[i].State = MilestoneCurrent
		default:
			milestones[i].State = MilestoneUpcoming
		}
	}

	status := s.Status
	if status == "" {
		status = DeliveryStatusToOrderStatus("").String()
	}
	trackingStatus := s.TrackingStatus
	if trackingStatus == "" {
		trackingStatus = milestones[latest].Title
	}

	return Timeline{
		Status:         status,
		TrackingStatus: trackingStatus,
		Milestones:     milestones,
		LastUpdated:    now,
	}
}

// PlaceholderTimeline is shown for a paid order whose parcel has no delivery
// job yet.
func PlaceholderTimeline(receivedAt, now time.Time) Timeline {
	received := receivedAt
	return Timeline{
		Status:         PlaceholderStatus,
		TrackingStatus: PlaceholderTrackingStatus,
		Milestones: []Milestone{
			{Title: MilestoneOrderReceived, Description: "Your order has been received", State: MilestoneCompleted, Timestamp: &received},
			{Title: placeholderSetupTitle, Description: "A tracking number is being assigned", State: MilestoneCurrent},
			{Title: MilestoneOutForDelivery, Description: "Your parcel is on its way", State: MilestoneUpcoming},
			{Title: MilestoneDelivered, Description: "Your parcel has been delivered", State: MilestoneUpcoming},
		},
		LastUpdated: now,
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
