package allocator

import (
	"fmt"

	"github.com/pkg/errors"
)

// Table is a seating resource of fixed Capacity, which may be shared by
// multiple ClientsGroups so long as their summed Size fits. Tables are
// created once from the configured layout and are mutated only by the
// Allocator, while it holds its exclusive lock.
type Table struct {
	// Index of the Table within the configured layout.
	Index int
	// Capacity of the Table. Immutable.
	Capacity int

	occupied int            // Sum of |groups| sizes.
	groups   []ClientsGroup // Seated groups, in seating order.
}

func newTable(index, capacity int) *Table {
	return &Table{Index: index, Capacity: capacity}
}

// Occupied returns the number of occupied seats.
func (t *Table) Occupied() int { return t.occupied }

// Available returns the number of unoccupied seats.
func (t *Table) Available() int { return t.Capacity - t.occupied }

// IsEmpty is true if no group is seated at the Table.
func (t *Table) IsEmpty() bool { return t.occupied == 0 }

// IsPartial is true if the Table is occupied, but not fully.
func (t *Table) IsPartial() bool { return t.occupied > 0 && t.occupied < t.Capacity }

// IsFull is true if every seat of the Table is occupied.
func (t *Table) IsFull() bool { return t.occupied == t.Capacity }

// CanFitMore is true if a group of |size| fits within unoccupied seats.
func (t *Table) CanFitMore(size int) bool { return t.Capacity-t.occupied >= size }

// seat the group at the Table. It checks only that the group fits within
// total Capacity: remaining capacity is the responsibility of the caller.
func (t *Table) seat(g ClientsGroup) error {
	if g.Size > t.Capacity {
		return errors.WithMessagef(ErrCapacity, "%s at table %d of capacity %d",
			g, t.Index, t.Capacity)
	}
	t.groups = append(t.groups, g)
	t.occupied += g.Size
	return nil
}

// release the group from the Table. The group must be seated here.
func (t *Table) release(id GroupID) ClientsGroup {
	for i, g := range t.groups {
		if g.ID != id {
			continue
		}
		t.groups = append(t.groups[:i], t.groups[i+1:]...)
		t.occupied -= g.Size
		return g
	}
	panic(fmt.Sprintf("group %d is not seated at table %d", id, t.Index))
}

// view returns an immutable TableView of the Table.
func (t *Table) view() TableView {
	return TableView{
		Index:    t.Index,
		Capacity: t.Capacity,
		Occupied: t.occupied,
		Groups:   append([]ClientsGroup(nil), t.groups...),
	}
}

// TableView is a point-in-time copy of a Table's state.
type TableView struct {
	Index    int            `json:"index" yaml:"index"`
	Capacity int            `json:"capacity" yaml:"capacity"`
	Occupied int            `json:"occupied" yaml:"occupied"`
	Groups   []ClientsGroup `json:"groups" yaml:"groups"`
}

// IsEmpty is true if no group was seated.
func (v TableView) IsEmpty() bool { return v.Occupied == 0 }

// IsPartial is true if the Table was occupied, but not fully.
func (v TableView) IsPartial() bool { return v.Occupied > 0 && v.Occupied < v.Capacity }

// IsFull is true if every seat was occupied.
func (v TableView) IsFull() bool { return v.Occupied == v.Capacity }
