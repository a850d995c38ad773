package events

import (
	platformevents "quote_portal_backend/platform/events"
	"quote_portal_backend/platform/logger"
)

// InMemoryBus is the process-local bus the composition root hands to the
// quoting, lead transfer and notification modules.
type InMemoryBus = platformevents.InMemoryBus

// NewInMemoryBus creates the bus outcome events are published on.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}
