package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whentomeet/internal/domain"
)

type stubGeocoder struct {
	points map[string]domain.GeoPoint
	err    error
}

func (s *stubGeocoder) Geocode(ctx context.Context, address string) (domain.GeoPoint, error) {
	if s.err != nil {
		return domain.GeoPoint{}, s.err
	}
	p, ok := s.points[address]
	if !ok {
		return domain.GeoPoint{}, errors.New("no such place")
	}
	return p, nil
}

type stubPlanner struct {
	travel time.Duration
	err    error
}

func (s *stubPlanner) Route(ctx context.Context, from, to domain.GeoPoint) (time.Duration, error) {
	return s.travel, s.err
}

type recordingPusher struct {
	mu     sync.Mutex
	pushed []string
	done   chan struct{}
}

func (p *recordingPusher) Push(ctx context.Context, deviceToken, title, body string) error {
	p.mu.Lock()
	p.pushed = append(p.pushed, deviceToken)
	p.mu.Unlock()
	if p.done != nil {
		close(p.done)
	}
	return nil
}

func (p *recordingPusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pushed)
}

func alarmStubs(travel time.Duration) (*stubGeocoder, *stubPlanner) {
	geo := &stubGeocoder{points: map[string]domain.GeoPoint{
		"home":   {Lat: 52.5, Lng: 13.3, Address: "home"},
		"office": {Lat: 52.52, Lng: 13.4, Address: "office"},
	}}
	return geo, &stubPlanner{travel: travel}
}

func TestAlarmService_Set(t *testing.T) {
	ctx := context.Background()

	t.Run("computes the departure time from the travel estimate", func(t *testing.T) {
		geo, planner := alarmStubs(30 * time.Minute)
		svc := NewAlarmService(geo, planner, &recordingPusher{}, testLogger())

		arriveAt := time.Now().Add(2 * time.Hour)
		alarm, err := svc.Set(ctx, "u-1", "home", "office", "token-1", arriveAt)
		require.NoError(t, err)
		assert.NotEmpty(t, alarm.ID)
		assert.Equal(t, arriveAt.Add(-30*time.Minute), alarm.DepartAt)
		assert.Equal(t, "home", alarm.Departure.Address)
		assert.Equal(t, "office", alarm.Destination.Address)
		assert.True(t, svc.Cancel(alarm.ID))
	})

	t.Run("rejects departure times already past", func(t *testing.T) {
		geo, planner := alarmStubs(2 * time.Hour)
		svc := NewAlarmService(geo, planner, &recordingPusher{}, testLogger())

		_, err := svc.Set(ctx, "u-1", "home", "office", "token-1", time.Now().Add(time.Hour))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already past")
	})

	t.Run("propagates geocoding failures", func(t *testing.T) {
		geo, planner := alarmStubs(time.Minute)
		geo.err = errors.New("quota exceeded")
		svc := NewAlarmService(geo, planner, &recordingPusher{}, testLogger())

		_, err := svc.Set(ctx, "u-1", "home", "office", "token-1", time.Now().Add(time.Hour))
		assert.Error(t, err)
	})
}

func TestAlarmService_FireAndCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("fires the push at the departure instant", func(t *testing.T) {
		geo, planner := alarmStubs(0)
		pusher := &recordingPusher{done: make(chan struct{})}
		svc := NewAlarmService(geo, planner, pusher, testLogger())

		_, err := svc.Set(ctx, "u-1", "home", "office", "token-1", time.Now().Add(50*time.Millisecond))
		require.NoError(t, err)

		select {
		case <-pusher.done:
		case <-time.After(2 * time.Second):
			t.Fatal("alarm did not fire")
		}
		assert.Equal(t, 1, pusher.count())
	})

	t.Run("cancel stops a pending alarm", func(t *testing.T) {
		geo, planner := alarmStubs(0)
		pusher := &recordingPusher{}
		svc := NewAlarmService(geo, planner, pusher, testLogger())

		alarm, err := svc.Set(ctx, "u-1", "home", "office", "token-1", time.Now().Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, svc.Cancel(alarm.ID))
		assert.False(t, svc.Cancel(alarm.ID), "second cancel finds nothing")
		assert.Equal(t, 0, pusher.count())
	})
}
