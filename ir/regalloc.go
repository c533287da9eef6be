package ir

import "sort"

// Location is the storage assigned to a linear number by
// LinearScanRegAlloc: either a Register or a Stack slot.
type Location struct {
	IsStack bool
	Index   int
	Name    string
}

// LinearScanRegAlloc assigns registers and spill slots to live intervals
// using the classic linear-scan algorithm: a LIFO pool of registers, an
// active set sorted by interval end, and an unbounded LIFO pool of stack
// slots for anything that does not fit.
type LinearScanRegAlloc struct {
	intervals []*LiveInterval
	numRegs   int

	freeRegs  []int // LIFO, register indices
	freeStack []int // LIFO, stack slot indices
	nextStack int

	active []*LiveInterval // sorted by End, ascending
	locs   map[int32]Location
}

// NewLinearScanRegAlloc constructs the allocator over the given
// intervals with a fixed-size register pool (e.g. 3 for x0..x2).
func NewLinearScanRegAlloc(intervals []*LiveInterval, numRegs int) *LinearScanRegAlloc {
	return &LinearScanRegAlloc{intervals: intervals, numRegs: numRegs}
}

func registerName(i int) string {
	return "x" + itoa(i)
}

func stackName(i int) string {
	return "s" + itoa(i+1)
}

// itoa avoids pulling in strconv for a single tiny integer-to-decimal
// conversion used only for register/stack names.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [12]byte
	pos := len(buf)
	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[pos:])
}

// Run performs the allocation, populating the result map.
func (ra *LinearScanRegAlloc) Run() {
	ra.locs = make(map[int32]Location, len(ra.intervals))
	ra.freeRegs = nil
	for i := ra.numRegs - 1; i >= 0; i-- {
		ra.freeRegs = append(ra.freeRegs, i)
	}
	ra.freeStack = nil
	ra.nextStack = 0
	ra.active = nil

	work := make([]*LiveInterval, 0, len(ra.intervals))
	for _, iv := range ra.intervals {
		if iv.Begin() == 0 && iv.End() == 0 {
			continue
		}
		work = append(work, iv)
	}
	sort.Slice(work, func(i, j int) bool { return work[i].Begin() < work[j].Begin() })

	for _, iv := range work {
		ra.expire(iv.Begin())
		ra.allocateOrSpill(iv)
	}
}

// RegsMap returns the computed linear-number -> Location assignment.
func (ra *LinearScanRegAlloc) RegsMap() map[int32]Location { return ra.locs }

// expire returns to the free pool every active interval whose end is at
// or before point, preserving the active list's end-sorted order.
func (ra *LinearScanRegAlloc) expire(point int32) {
	i := 0
	for i < len(ra.active) && ra.active[i].End() <= point {
		loc := ra.locs[ra.active[i].LinearNumber()]
		if !loc.IsStack {
			ra.freeRegs = append(ra.freeRegs, loc.Index)
		}
		i++
	}
	ra.active = ra.active[i:]
}

func (ra *LinearScanRegAlloc) allocateOrSpill(iv *LiveInterval) {
	if len(ra.freeRegs) > 0 {
		idx := ra.freeRegs[len(ra.freeRegs)-1]
		ra.freeRegs = ra.freeRegs[:len(ra.freeRegs)-1]
		ra.locs[iv.LinearNumber()] = Location{Index: idx, Name: registerName(idx)}
		ra.insertActive(iv)
		return
	}

	if len(ra.active) > 0 {
		tail := ra.active[len(ra.active)-1]
		if tail.End() > iv.End() {
			loc := ra.locs[tail.LinearNumber()]
			ra.locs[iv.LinearNumber()] = loc
			ra.locs[tail.LinearNumber()] = ra.allocStackSlot()
			ra.active = ra.active[:len(ra.active)-1]
			ra.insertActive(iv)
			return
		}
	}

	ra.locs[iv.LinearNumber()] = ra.allocStackSlot()
}

func (ra *LinearScanRegAlloc) allocStackSlot() Location {
	if len(ra.freeStack) > 0 {
		idx := ra.freeStack[len(ra.freeStack)-1]
		ra.freeStack = ra.freeStack[:len(ra.freeStack)-1]
		return Location{IsStack: true, Index: idx, Name: stackName(idx)}
	}
	idx := ra.nextStack
	ra.nextStack++
	return Location{IsStack: true, Index: idx, Name: stackName(idx)}
}

func (ra *LinearScanRegAlloc) insertActive(iv *LiveInterval) {
	i := sort.Search(len(ra.active), func(i int) bool { return ra.active[i].End() >= iv.End() })
	ra.active = append(ra.active, nil)
	copy(ra.active[i+1:], ra.active[i:])
	ra.active[i] = iv
}
