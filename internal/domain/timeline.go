package domain

import "time"

// TimelineEvent описывает событие в хронологии заказа магазина.
type TimelineEvent struct {
	OrderID  string
	Type     string
	Reason   string
	Occurred time.Time
}

// NewTimelineEvent собирает событие хронологии с текущим временем в UTC.
func NewTimelineEvent(orderID, eventType, reason string) TimelineEvent {
	return TimelineEvent{
		OrderID:  orderID,
		Type:     eventType,
		Reason:   reason,
		Occurred: time.Now().UTC(),
	}
}
