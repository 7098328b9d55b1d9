package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckIns counts successful check-in operations.
	CheckIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostel_checkins_total",
		Help: "Total number of successful check-ins.",
	})

	// CheckOuts counts successful check-out operations.
	CheckOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostel_checkouts_total",
		Help: "Total number of successful check-outs.",
	})

	// EventsPublished counts occupancy events delivered to the channel.
	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostel_occupancy_events_published_total",
		Help: "Total number of occupancy events published.",
	})

	// EventsDropped counts occupancy events lost to a full queue or a
	// failed publish. Delivery is best-effort, so these are expected
	// under channel outages.
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hostel_occupancy_events_dropped_total",
		Help: "Total number of occupancy events dropped.",
	})
)
