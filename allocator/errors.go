package allocator

import "github.com/pkg/errors"

var (
	// ErrDuplicateGroup is returned by Admit if the group ID is already
	// seated or waitlisted.
	ErrDuplicateGroup = errors.New("group already admitted")
	// ErrUnknownGroup is returned by Remove if the group ID is not currently
	// seated. That includes groups which are only waitlisted, which never
	// arrived, or which have already left.
	ErrUnknownGroup = errors.New("group is not seated")
	// ErrCapacity is returned when a group is seated at a Table whose total
	// capacity is smaller than the group. The Allocator never selects such a
	// Table, so observing it indicates a broken invariant.
	ErrCapacity = errors.New("table is too small for group")
	// ErrInvalidGroup is returned for groups of non-positive size.
	ErrInvalidGroup = errors.New("invalid group")
	// ErrInvalidLayout is returned when building an Allocator from an empty
	// table layout, or one having a non-positive capacity.
	ErrInvalidLayout = errors.New("invalid table layout")
)
