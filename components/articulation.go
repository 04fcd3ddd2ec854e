package components

import (
	"iter"

	"github.com/automoto/deadreckoning/shared/gamemath"
	"github.com/automoto/deadreckoning/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// Articulation is the dead reckoned state of one articulated part (turret,
// barrel, antenna). Start and Rate are XYZ offsets for positional metrics and
// heading/pitch/roll for angular ones.
type Articulation struct {
	Name   string
	Metric netconfig.ArticulationMetric
	Start  mgl64.Vec3
	Rate   mgl64.Vec3

	Current mgl64.Vec3
	Elapsed float64
	Updated bool
}

// Advance integrates Current = Start + Rate*elapsed.
func (a *Articulation) Advance(dt float64) {
	a.Elapsed += dt
	cur := a.Start.Add(a.Rate.Mul(a.Elapsed))
	if a.Metric.Angular() {
		for i := range cur {
			cur[i] = gamemath.WrapAngle(cur[i])
		}
	}
	a.Current = cur
}

// ResetOnNewUpdate starts a new integration segment from a fresh update.
func (a *Articulation) ResetOnNewUpdate(start, rate mgl64.Vec3) {
	a.Start = start
	a.Rate = rate
	a.Current = start
	a.Elapsed = 0
	a.Updated = true
}

// Matches compares the values that identify a part's kinetic segment.
func (a *Articulation) Matches(other Articulation) bool {
	return a.Name == other.Name &&
		a.Metric == other.Metric &&
		a.Start == other.Start &&
		a.Rate == other.Rate
}

// ArticulationHandle is a stable reference into an ArticulationList. It stays
// valid until its entry is removed; the zero value never refers to an entry.
type ArticulationHandle struct {
	index int32
	gen   uint32
}

// IsZero reports whether h is the zero handle.
func (h ArticulationHandle) IsZero() bool {
	return h.gen == 0
}

// links are slot index + 1 so the zero value means "none"
type articulationSlot struct {
	value      Articulation
	prev, next int32
	gen        uint32
	live       bool
}

// ArticulationList is an ordered, doubly linked sequence of articulations
// stored in a slot arena. The zero value is an empty list.
type ArticulationList struct {
	slots      []articulationSlot
	free       []int32
	head, tail int32
	count      int
}

// Len returns the number of live entries.
func (l *ArticulationList) Len() int {
	return l.count
}

func (l *ArticulationList) slot(h ArticulationHandle) *articulationSlot {
	if h.gen == 0 || h.index < 0 || int(h.index) >= len(l.slots) {
		return nil
	}
	s := &l.slots[h.index]
	if !s.live || s.gen != h.gen {
		return nil
	}
	return s
}

func (l *ArticulationList) alloc(a Articulation) int32 {
	var idx int32
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		idx = int32(len(l.slots))
		l.slots = append(l.slots, articulationSlot{})
	}
	s := &l.slots[idx]
	s.value = a
	s.prev, s.next = 0, 0
	s.gen++
	s.live = true
	l.count++
	return idx
}

func (l *ArticulationList) handleOf(idx int32) ArticulationHandle {
	return ArticulationHandle{index: idx, gen: l.slots[idx].gen}
}

// PushBack appends a to the end of the list.
func (l *ArticulationList) PushBack(a Articulation) ArticulationHandle {
	idx := l.alloc(a)
	link := idx + 1
	if l.tail == 0 {
		l.head, l.tail = link, link
	} else {
		l.slots[l.tail-1].next = link
		l.slots[idx].prev = l.tail
		l.tail = link
	}
	return l.handleOf(idx)
}

// InsertAfter links a directly after the entry at h. The zero handle inserts
// at the front. It returns false if h is stale.
func (l *ArticulationList) InsertAfter(h ArticulationHandle, a Articulation) (ArticulationHandle, bool) {
	if h.IsZero() {
		idx := l.alloc(a)
		link := idx + 1
		l.slots[idx].next = l.head
		if l.head != 0 {
			l.slots[l.head-1].prev = link
		} else {
			l.tail = link
		}
		l.head = link
		return l.handleOf(idx), true
	}

	if l.slot(h) == nil {
		return ArticulationHandle{}, false
	}
	idx := l.alloc(a)
	// alloc may grow the arena, so re-read the anchor after it
	anchor := &l.slots[h.index]
	link, anchorLink := idx+1, h.index+1

	l.slots[idx].prev = anchorLink
	l.slots[idx].next = anchor.next
	if anchor.next != 0 {
		l.slots[anchor.next-1].prev = link
	} else {
		l.tail = link
	}
	anchor.next = link
	return l.handleOf(idx), true
}

// Get returns the entry at h, or false if h is stale.
func (l *ArticulationList) Get(h ArticulationHandle) (*Articulation, bool) {
	s := l.slot(h)
	if s == nil {
		return nil, false
	}
	return &s.value, true
}

// Remove unlinks the entry at h. Removing the last entry leaves an empty list.
func (l *ArticulationList) Remove(h ArticulationHandle) bool {
	s := l.slot(h)
	if s == nil {
		return false
	}
	if s.prev != 0 {
		l.slots[s.prev-1].next = s.next
	} else {
		l.head = s.next
	}
	if s.next != 0 {
		l.slots[s.next-1].prev = s.prev
	} else {
		l.tail = s.prev
	}

	*s = articulationSlot{gen: s.gen}
	l.free = append(l.free, h.index)
	l.count--
	return true
}

// RemoveMatching removes the first entry whose values match a.
func (l *ArticulationList) RemoveMatching(a Articulation) bool {
	for h, cur := range l.All() {
		if cur.Matches(a) {
			return l.Remove(h)
		}
	}
	return false
}

// RemoveAllByName removes every entry named name and returns how many went.
func (l *ArticulationList) RemoveAllByName(name string) int {
	var doomed []ArticulationHandle
	for h, cur := range l.All() {
		if cur.Name == name {
			doomed = append(doomed, h)
		}
	}
	for _, h := range doomed {
		l.Remove(h)
	}
	return len(doomed)
}

// FindByName returns the first entry named name.
func (l *ArticulationList) FindByName(name string) (ArticulationHandle, *Articulation, bool) {
	for h, cur := range l.All() {
		if cur.Name == name {
			return h, cur, true
		}
	}
	return ArticulationHandle{}, nil, false
}

// All iterates front to back. Removing the yielded entry during iteration is
// allowed; other structural changes are not.
func (l *ArticulationList) All() iter.Seq2[ArticulationHandle, *Articulation] {
	return func(yield func(ArticulationHandle, *Articulation) bool) {
		for link := l.head; link != 0; {
			idx := link - 1
			next := l.slots[idx].next
			if !yield(l.handleOf(idx), &l.slots[idx].value) {
				return
			}
			link = next
		}
	}
}

// Backward iterates back to front.
func (l *ArticulationList) Backward() iter.Seq2[ArticulationHandle, *Articulation] {
	return func(yield func(ArticulationHandle, *Articulation) bool) {
		for link := l.tail; link != 0; {
			idx := link - 1
			prev := l.slots[idx].prev
			if !yield(l.handleOf(idx), &l.slots[idx].value) {
				return
			}
			link = prev
		}
	}
}
