package allocator

import (
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Allocator admits ClientsGroups to Tables of a fixed layout, maintains a
// waitlist of groups which could not be seated, and re-admits waitlisted
// groups as seated groups depart. An Allocator is safe for concurrent use.
type Allocator struct {
	// mu guards all fields below. Admit and Remove hold it exclusively for
	// their full duration, including existence checks.
	mu sync.RWMutex

	tables   []*Table           // Tables in configured layout order.
	waitlist *waitlist          // Groups awaiting a seat.
	index    map[GroupID]*Table // Seated groups and their Table.
	occupied int                // Occupied seats summed across |tables|.
}

// New returns an Allocator over Tables of the given |capacities|, which are
// retained in the order provided. |capacities| must be non-empty and each
// capacity must be positive.
func New(capacities []int) (*Allocator, error) {
	if len(capacities) == 0 {
		return nil, errors.WithMessage(ErrInvalidLayout, "expected at least one table")
	}
	var a = &Allocator{
		tables:   make([]*Table, len(capacities)),
		waitlist: newWaitlist(),
		index:    make(map[GroupID]*Table),
	}
	var seats int
	for i, c := range capacities {
		if c <= 0 {
			return nil, errors.WithMessagef(ErrInvalidLayout, "table %d has capacity %d (expected > 0)", i, c)
		}
		a.tables[i] = newTable(i, c)
		seats += c
	}
	allocatorSeats.Set(float64(seats))
	a.updateGauges()

	return a, nil
}

// Admit the ClientsGroup. The group is seated at the first empty Table (in
// layout order) having sufficient capacity or, failing that, at the first
// Table of any occupancy with sufficient unoccupied seats. Otherwise, the
// group is placed on the waitlist. Admit returns ErrDuplicateGroup if the
// group ID is already seated or waitlisted, in which case no state changes.
func (a *Allocator) Admit(g ClientsGroup) error {
	if err := g.Validate(); err != nil {
		allocatorGroupsRejectedTotal.WithLabelValues(rejectInvalid).Inc()
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.index[g.ID]; ok || a.waitlist.contains(g.ID) {
		allocatorGroupsRejectedTotal.WithLabelValues(rejectDuplicate).Inc()
		return errors.WithMessagef(ErrDuplicateGroup, "group %d", g.ID)
	}
	defer a.updateGauges()

	if t := a.firstEmptyFit(g.Size); t != nil {
		a.seatAt(t, g, "seated group at empty table")
	} else if t = a.firstFit(g.Size); t != nil {
		a.seatAt(t, g, "seated group at shared table")
	} else {
		a.waitlist.push(g)
		allocatorGroupsQueuedTotal.Inc()

		log.WithFields(log.Fields{
			"group":    g.ID,
			"size":     g.Size,
			"waitlist": a.waitlist.len(),
		}).Info("no table fits group; waitlisted")
		return nil
	}
	allocatorGroupsSeatedTotal.Inc()
	return nil
}

// Remove the seated ClientsGroup from its Table, and then sweep the
// waitlist to seat waiting groups into freed capacity. Remove returns
// ErrUnknownGroup if the group ID isn't seated, in which case no state
// changes. The seated record of the group determines the number of seats
// freed; the Size of |g| is informational.
func (a *Allocator) Remove(g ClientsGroup) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var t, ok = a.index[g.ID]
	if !ok {
		allocatorGroupsRejectedTotal.WithLabelValues(rejectUnknown).Inc()
		return errors.WithMessagef(ErrUnknownGroup, "group %d", g.ID)
	}
	defer a.updateGauges()

	var seated = t.release(g.ID)
	delete(a.index, g.ID)
	a.occupied -= seated.Size
	allocatorGroupsRemovedTotal.Inc()

	if g.Size != 0 && g.Size != seated.Size {
		log.WithFields(log.Fields{
			"group":    g.ID,
			"size":     g.Size,
			"seatedAs": seated.Size,
		}).Warn("departing group size differs from its seated size (using seated size)")
	}
	log.WithFields(log.Fields{
		"group":    seated.ID,
		"size":     seated.Size,
		"table":    t.Index,
		"capacity": t.Capacity,
		"occupied": t.occupied,
	}).Info("group left table")

	a.sweep(seated.Size)
	return nil
}

// Lookup returns a view of the Table at which the group is seated. It
// returns false if the group is waitlisted, unknown, or has left.
func (a *Allocator) Lookup(id GroupID) (TableView, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if t, ok := a.index[id]; ok {
		return t.view(), true
	}
	return TableView{}, false
}

// Snapshot is a consistent, point-in-time copy of Allocator state.
type Snapshot struct {
	// Tables in layout order.
	Tables []TableView `json:"tables" yaml:"tables"`
	// Waitlist in dequeue order.
	Waitlist []ClientsGroup `json:"waitlist" yaml:"waitlist"`
}

// Snapshot returns a consistent copy of all Tables and the waitlist.
func (a *Allocator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var s = Snapshot{
		Tables:   make([]TableView, len(a.tables)),
		Waitlist: a.waitlist.ordered(),
	}
	for i, t := range a.tables {
		s.Tables[i] = t.view()
	}
	return s
}

// WaitlistLen returns the number of waitlisted groups.
func (a *Allocator) WaitlistLen() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.waitlist.len()
}

// sweep re-admits waitlisted groups after a departure freed |seatsAvailable|
// seats. Groups are popped smallest-first, each charged against the running
// |seatsAvailable| budget and seated at the first Table (in layout order)
// with room. After each seating, the sweep ends if the budget can't cover
// the next waitlisted group.
//
// A popped group which fits no Table is restored to the waitlist, at its
// prior position, and the sweep ends. Seating only ever adds occupancy and
// later groups are no smaller, so no later group could be seated either.
func (a *Allocator) sweep(seatsAvailable int) {
	for {
		var e, ok = a.waitlist.pop()
		if !ok {
			return
		}
		seatsAvailable -= e.group.Size

		var t = a.firstFit(e.group.Size)
		if t == nil {
			a.waitlist.restore(e)
			allocatorSweepDeferredTotal.Inc()

			log.WithFields(log.Fields{
				"group":    e.group.ID,
				"size":     e.group.Size,
				"waitlist": a.waitlist.len(),
			}).Info("no table fits waitlisted group; it remains waitlisted")
			return
		}
		a.seatAt(t, e.group, "seated waitlisted group")
		allocatorSweepSeatedTotal.Inc()

		if head, ok := a.waitlist.peek(); ok && seatsAvailable < head.Size {
			log.WithFields(log.Fields{
				"seatsAvailable": seatsAvailable,
				"nextSize":       head.Size,
				"waitlist":       a.waitlist.len(),
			}).Debug("sweep budget exhausted")
			return
		}
	}
}

// firstEmptyFit returns the first empty Table of sufficient capacity.
func (a *Allocator) firstEmptyFit(size int) *Table {
	for _, t := range a.tables {
		if t.IsEmpty() && t.Capacity >= size {
			return t
		}
	}
	return nil
}

// firstFit returns the first Table having |size| unoccupied seats.
func (a *Allocator) firstFit(size int) *Table {
	for _, t := range a.tables {
		if t.CanFitMore(size) {
			return t
		}
	}
	return nil
}

// seatAt seats the group at Table |t| and indexes it. |t| must have been
// selected by a policy which already verified the group fits.
func (a *Allocator) seatAt(t *Table, g ClientsGroup, msg string) {
	if err := t.seat(g); err != nil {
		log.WithFields(log.Fields{"err": err, "group": g.ID, "table": t.Index}).
			Panic("seating policy selected a table which cannot fit the group")
	}
	a.index[g.ID] = t
	a.occupied += g.Size

	log.WithFields(log.Fields{
		"group":    g.ID,
		"size":     g.Size,
		"table":    t.Index,
		"capacity": t.Capacity,
		"occupied": t.occupied,
	}).Info(msg)
}

func (a *Allocator) updateGauges() {
	allocatorWaitlistGroups.Set(float64(a.waitlist.len()))
	allocatorOccupiedSeats.Set(float64(a.occupied))
}
