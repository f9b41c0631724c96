package session

import "sync/atomic"

// palette order matters: clients render the first joiner of a fresh process
// in blue, the second in green, and so on.
var palette = []string{"blue", "green", "red", "orange", "purple", "yellow", "aqua", "magenta"}

// ColorAllocator hands out display colors round-robin over a fixed palette.
// The counter is process-wide and shared across all rooms; colors are never
// reclaimed. Uniqueness only matters within a single room's rendering, so
// cycling back to an already-used color in another room is fine.
type ColorAllocator struct {
	counter atomic.Uint64
}

func NewColorAllocator() *ColorAllocator { return &ColorAllocator{} }

func (a *ColorAllocator) Next() string {
	n := a.counter.Add(1) - 1
	return palette[n%uint64(len(palette))]
}

// PaletteSize reports how many distinct colors exist before Next cycles.
func PaletteSize() int { return len(palette) }
