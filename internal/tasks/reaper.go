package tasks

import (
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultRetention is how long terminal tasks stay pollable before eviction.
const DefaultRetention = 30 * time.Minute

// Reaper periodically evicts terminal tasks past their retention window so
// the in-memory registry cannot grow without bound.
type Reaper struct {
	cron    *cron.Cron
	manager *Manager
	logger  zerolog.Logger
}

// NewReaper schedules a sweep on the given cron expression (for example
// "@every 5m").
func NewReaper(manager *Manager, schedule string, retention time.Duration, logger zerolog.Logger) (*Reaper, error) {
	if manager == nil {
		return nil, errors.New("tasks: manager is required")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if removed := manager.sweep(retention); removed > 0 {
			logger.Info().Int("evicted", removed).Msg("task reaper sweep")
		}
	})
	if err != nil {
		return nil, err
	}
	return &Reaper{cron: c, manager: manager, logger: logger}, nil
}

// Start begins the sweep schedule.
func (r *Reaper) Start() {
	r.cron.Start()
}

// Stop halts scheduling; a sweep already in flight finishes.
func (r *Reaper) Stop() {
	r.cron.Stop()
}
