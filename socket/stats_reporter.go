package socket

import (
	"fmt"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// LogStats writes the current live table sizes to the log
func (h *Hub) LogStats() {
	stats := h.Stats()
	log.WithFields(log.Fields{
		"online":       stats.Online,
		"queueFree":    stats.Queues[QueueFree],
		"queueMale":    stats.Queues[QueueMale],
		"queueFemale":  stats.Queues[QueueFemale],
		"pendingCalls": stats.PendingCalls,
		"activeCalls":  stats.ActiveCalls,
	}).Info("📊 Realtime stats")
}

// StartStatsReporter logs hub stats on schedule (a cron spec such as "@every 1m").
// The returned cron must be stopped on shutdown.
func StartStatsReporter(hub *Hub, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, hub.LogStats); err != nil {
		return nil, fmt.Errorf("invalid stats schedule %q: %w", schedule, err)
	}
	c.Start()
	log.WithField("schedule", schedule).Info("⏱️ Stats reporter started")
	return c, nil
}
