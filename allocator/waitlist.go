package allocator

import (
	"container/heap"
	"sort"
)

// waitlist is a min-priority queue of ClientsGroups keyed on group Size.
// The smallest group is dequeued first; groups of equal Size dequeue in
// the order they were enqueued. Arrival order across sizes is not honored.
type waitlist struct {
	heap    entryHeap
	ids     map[GroupID]struct{}
	nextSeq uint64
}

// waitlistEntry is a queued group and the sequence number which orders it
// against other groups of equal Size.
type waitlistEntry struct {
	group ClientsGroup
	seq   uint64
}

func newWaitlist() *waitlist {
	return &waitlist{ids: make(map[GroupID]struct{})}
}

// push a newly queued group.
func (w *waitlist) push(g ClientsGroup) {
	w.restore(waitlistEntry{group: g, seq: w.nextSeq})
	w.nextSeq++
}

// restore a previously popped entry, retaining its original position
// relative to other queued groups.
func (w *waitlist) restore(e waitlistEntry) {
	heap.Push(&w.heap, e)
	w.ids[e.group.ID] = struct{}{}
}

// pop the highest-priority entry.
func (w *waitlist) pop() (waitlistEntry, bool) {
	if len(w.heap) == 0 {
		return waitlistEntry{}, false
	}
	var e = heap.Pop(&w.heap).(waitlistEntry)
	delete(w.ids, e.group.ID)
	return e, true
}

// peek at the highest-priority group without removing it.
func (w *waitlist) peek() (ClientsGroup, bool) {
	if len(w.heap) == 0 {
		return ClientsGroup{}, false
	}
	return w.heap[0].group, true
}

func (w *waitlist) len() int { return len(w.heap) }

func (w *waitlist) contains(id GroupID) bool {
	var _, ok = w.ids[id]
	return ok
}

// ordered returns queued groups in the order they would be dequeued.
func (w *waitlist) ordered() []ClientsGroup {
	var entries = append(entryHeap(nil), w.heap...)
	sort.Sort(entries)

	var out = make([]ClientsGroup, len(entries))
	for i, e := range entries {
		out[i] = e.group
	}
	return out
}

// entryHeap implements heap.Interface over waitlistEntry.
type entryHeap []waitlistEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].group.Size != h[j].group.Size {
		return h[i].group.Size < h[j].group.Size
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(waitlistEntry)) }

func (h *entryHeap) Pop() interface{} {
	var old = *h
	var n = len(old)
	var e = old[n-1]
	*h = old[:n-1]
	return e
}
