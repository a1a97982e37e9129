package models

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransitionToAllowsDefinedEdges(t *testing.T) {
	allowed := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusDeclined},
		{StatusConfirmed, StatusProcessing},
		{StatusProcessing, StatusDelivered},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestCanTransitionToRejectsSkipAheadAndBackward(t *testing.T) {
	rejected := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{StatusPending, StatusDelivered},
		{StatusPending, StatusProcessing},
		{StatusConfirmed, StatusDelivered},
		{StatusConfirmed, StatusPending},
		{StatusProcessing, StatusPending},
		{StatusDelivered, StatusProcessing},
		{StatusDeclined, StatusConfirmed},
		{StatusPending, StatusPending},
	}
	for _, tc := range rejected {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusDelivered.IsTerminal() || !StatusDeclined.IsTerminal() {
		t.Fatal("delivered and declined must be terminal")
	}
	if StatusPending.IsTerminal() || StatusConfirmed.IsTerminal() || StatusProcessing.IsTerminal() {
		t.Fatal("pending, confirmed and processing must not be terminal")
	}
}

func TestParseOrderStatusRejectsUnknownValues(t *testing.T) {
	for _, value := range []string{"", "shipped", "PENDING", "cancelled"} {
		if _, err := ParseOrderStatus(value); err == nil {
			t.Fatalf("expected error for status %q", value)
		}
	}
	if status, err := ParseOrderStatus("confirmed"); err != nil || status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %q err=%v", status, err)
	}
}

func TestLatestStatusMatchesLastHistoryEvent(t *testing.T) {
	actor := primitive.NewObjectID()
	order := Order{
		Status: StatusConfirmed,
		StatusHistory: []StatusEvent{
			{Status: StatusPending, Timestamp: time.Now().Add(-time.Hour), ActorUserID: actor},
			{Status: StatusConfirmed, Timestamp: time.Now(), ActorUserID: actor},
		},
	}
	if order.LatestStatus() != order.Status {
		t.Fatalf("status %s diverged from latest event %s", order.Status, order.LatestStatus())
	}
}
