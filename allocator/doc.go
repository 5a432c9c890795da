// Package allocator implements admission of arriving client groups onto a
// fixed set of shared tables. Each Table has a fixed capacity and may seat
// several groups at once, so long as their combined size fits. Groups which
// cannot be seated are held in a waitlist ordered by ascending group size,
// and are re-admitted as departures free capacity.
//
// The Allocator is the single owner of all Tables, the waitlist, and the
// index of seated groups. Its operations are synchronous and atomic with
// respect to one another: Admit and Remove hold an exclusive lock for their
// full duration, while Lookup and Snapshot read under a shared lock.
package allocator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons attached to allocatorGroupsRejectedTotal.
const (
	rejectDuplicate = "duplicate"
	rejectInvalid   = "invalid"
	rejectUnknown   = "unknown"
)

var (
	allocatorGroupsSeatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tablekeeper_allocator_groups_seated_total",
		Help: "Cumulative number of groups seated upon arrival.",
	})
	allocatorGroupsQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tablekeeper_allocator_groups_queued_total",
		Help: "Cumulative number of groups placed onto the waitlist upon arrival.",
	})
	allocatorGroupsRemovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tablekeeper_allocator_groups_removed_total",
		Help: "Cumulative number of seated groups which have left their table.",
	})
	allocatorGroupsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tablekeeper_allocator_groups_rejected_total",
		Help: "Cumulative number of Admit or Remove requests rejected, by reason.",
	}, []string{"reason"})
	allocatorSweepSeatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tablekeeper_allocator_sweep_seated_total",
		Help: "Cumulative number of waitlisted groups seated by a departure sweep.",
	})
	allocatorSweepDeferredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tablekeeper_allocator_sweep_deferred_total",
		Help: "Cumulative number of waitlisted groups popped by a sweep which could not be seated, and were restored.",
	})
	allocatorWaitlistGroups = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tablekeeper_allocator_waitlist_groups",
		Help: "Number of groups currently on the waitlist.",
	})
	allocatorOccupiedSeats = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tablekeeper_allocator_occupied_seats",
		Help: "Number of seats currently occupied across all tables.",
	})
	allocatorSeats = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tablekeeper_allocator_seats",
		Help: "Number of seats summed across all configured tables.",
	})
)
