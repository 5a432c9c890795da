package allocator

import (
	gc "gopkg.in/check.v1"
)

type WaitlistSuite struct{}

func (s *WaitlistSuite) TestSmallestFirstThenFIFO(c *gc.C) {
	var w = newWaitlist()

	for i, size := range []int{6, 4, 2, 3, 4, 2, 6} {
		w.push(ClientsGroup{ID: GroupID(i + 1), Size: size})
	}
	c.Check(w.len(), gc.Equals, 7)
	c.Check(w.contains(2), gc.Equals, true)
	c.Check(w.contains(8), gc.Equals, false)

	var head, ok = w.peek()
	c.Check(ok, gc.Equals, true)
	c.Check(head.ID, gc.Equals, GroupID(3))

	c.Check(ids(w.ordered()), gc.DeepEquals, []GroupID{3, 6, 4, 2, 5, 1, 7})
	// ordered() doesn't consume the waitlist.
	c.Check(w.len(), gc.Equals, 7)

	var popped []GroupID
	for e, ok := w.pop(); ok; e, ok = w.pop() {
		popped = append(popped, e.group.ID)
		c.Check(w.contains(e.group.ID), gc.Equals, false)
	}
	c.Check(popped, gc.DeepEquals, []GroupID{3, 6, 4, 2, 5, 1, 7})

	_, ok = w.peek()
	c.Check(ok, gc.Equals, false)
	_, ok = w.pop()
	c.Check(ok, gc.Equals, false)
}

func (s *WaitlistSuite) TestRestoreRetainsPosition(c *gc.C) {
	var w = newWaitlist()
	w.push(ClientsGroup{ID: 1, Size: 2})
	w.push(ClientsGroup{ID: 2, Size: 2})
	w.push(ClientsGroup{ID: 3, Size: 2})

	var e, _ = w.pop()
	c.Check(e.group.ID, gc.Equals, GroupID(1))

	// A group pushed after the pop orders behind all others of equal size.
	w.push(ClientsGroup{ID: 4, Size: 2})
	// Whereas a restored group retains its original position.
	w.restore(e)

	c.Check(w.contains(1), gc.Equals, true)
	c.Check(ids(w.ordered()), gc.DeepEquals, []GroupID{1, 2, 3, 4})
}

func ids(groups []ClientsGroup) []GroupID {
	var out []GroupID
	for _, g := range groups {
		out = append(out, g.ID)
	}
	return out
}

var _ = gc.Suite(&WaitlistSuite{})
