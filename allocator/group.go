package allocator

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// GroupID uniquely identifies a ClientsGroup. It's supplied by the caller.
type GroupID int64

// ClientsGroup is a party of clients which arrives together and is seated
// together. A ClientsGroup is immutable once created.
type ClientsGroup struct {
	// ID of the group.
	ID GroupID `json:"id" yaml:"id"`
	// Size is the number of seats the group requires.
	Size int `json:"size" yaml:"size"`
	// ArrivedAt is informational only, and plays no role in ordering.
	ArrivedAt time.Time `json:"arrivedAt" yaml:"arrivedAt"`
}

// NewClientsGroup returns a ClientsGroup of |id| and |size| which arrived now.
func NewClientsGroup(id GroupID, size int) ClientsGroup {
	return ClientsGroup{ID: id, Size: size, ArrivedAt: timeNow()}
}

// Validate returns an error if the ClientsGroup is not well-formed.
func (g ClientsGroup) Validate() error {
	if g.Size <= 0 {
		return errors.WithMessagef(ErrInvalidGroup, "group %d has size %d (expected > 0)", g.ID, g.Size)
	}
	return nil
}

func (g ClientsGroup) String() string {
	return fmt.Sprintf("group %d (size %d)", g.ID, g.Size)
}

var timeNow = time.Now
