package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"whentomeet/internal/domain"
)

type alarmService struct {
	geocoder domain.Geocoder
	planner  domain.RoutePlanner
	pusher   domain.Pusher
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewAlarmService creates an AlarmService that schedules in-process departure
// alarms. Pending alarms are lost on restart.
func NewAlarmService(geocoder domain.Geocoder, planner domain.RoutePlanner, pusher domain.Pusher, logger *slog.Logger) domain.AlarmService {
	return &alarmService{
		geocoder: geocoder,
		planner:  planner,
		pusher:   pusher,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
	}
}

func (s *alarmService) Set(ctx context.Context, userID, departureAddr, destinationAddr, deviceToken string, arriveAt time.Time) (*domain.Alarm, error) {
	from, err := s.geocoder.Geocode(ctx, departureAddr)
	if err != nil {
		return nil, fmt.Errorf("geocode departure: %w", err)
	}
	to, err := s.geocoder.Geocode(ctx, destinationAddr)
	if err != nil {
		return nil, fmt.Errorf("geocode destination: %w", err)
	}
	travel, err := s.planner.Route(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("plan route: %w", err)
	}

	departAt := arriveAt.Add(-travel)
	if time.Until(departAt) <= 0 {
		return nil, fmt.Errorf("departure time %s is already past", departAt.Format(time.RFC3339))
	}

	alarm := &domain.Alarm{
		ID:          uuid.NewString(),
		UserID:      userID,
		DeviceToken: deviceToken,
		Departure:   from,
		Destination: to,
		ArriveAt:    arriveAt,
		DepartAt:    departAt,
	}

	s.mu.Lock()
	s.timers[alarm.ID] = time.AfterFunc(time.Until(departAt), func() {
		s.fire(alarm)
	})
	s.mu.Unlock()

	s.logger.Info("alarm scheduled", "alarm", alarm.ID, "user", userID, "depart_at", departAt)
	return alarm, nil
}

func (s *alarmService) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, id)
	return true
}

func (s *alarmService) fire(alarm *domain.Alarm) {
	s.mu.Lock()
	delete(s.timers, alarm.ID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	title := "Time to leave"
	body := fmt.Sprintf("Leave %s now to reach %s by %s", alarm.Departure.Address, alarm.Destination.Address, alarm.ArriveAt.Format("15:04"))
	if err := s.pusher.Push(ctx, alarm.DeviceToken, title, body); err != nil {
		s.logger.Error("alarm push failed", "alarm", alarm.ID, "user", alarm.UserID, "err", err)
	}
}
