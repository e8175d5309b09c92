package domain

import (
	"context"
	"time"
)

// Alarm is a scheduled departure reminder: a push notification fired when the
// user has to leave Departure to reach Destination by ArriveAt.
// swagger:model Alarm
type Alarm struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	DeviceToken string    `json:"-"`
	Departure   GeoPoint  `json:"departure"`
	Destination GeoPoint  `json:"destination"`
	ArriveAt    time.Time `json:"arrive_at"`
	DepartAt    time.Time `json:"depart_at"`
}

// AlarmService schedules departure alarms. Alarms are in-process timers: they
// do not survive a restart.
type AlarmService interface {
	Set(ctx context.Context, userID, departureAddr, destinationAddr, deviceToken string, arriveAt time.Time) (*Alarm, error)
	Cancel(id string) bool
}
