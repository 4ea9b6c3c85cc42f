package tracking

import "fmt"

// Range is a half-open byte range [Start, End).
type Range struct {
	Start ByteOffset
	End   ByteOffset
}

// Len returns the number of bytes in the range.
func (r Range) Len() ByteOffset {
	return r.End - r.Start
}

// IsEmpty returns true if the range holds no bytes.
func (r Range) IsEmpty() bool {
	return r.End <= r.Start
}

// Contains returns true if off lies in the range.
func (r Range) Contains(off ByteOffset) bool {
	return off >= r.Start && off < r.End
}

// Overlaps returns true if r and other share a byte. An empty range overlaps
// a range that strictly contains its position.
func (r Range) Overlaps(other Range) bool {
	if r.IsEmpty() {
		return other.Start < r.Start && r.Start < other.End
	}
	if other.IsEmpty() {
		return r.Start < other.Start && other.Start < r.End
	}
	return r.Start < other.End && other.Start < r.End
}

// Touches returns true if r and other overlap or share an endpoint.
func (r Range) Touches(other Range) bool {
	return r.Start <= other.End && other.Start <= r.End
}

// Union returns the smallest range covering r and other.
func (r Range) Union(other Range) Range {
	return Range{Start: min(r.Start, other.Start), End: max(r.End, other.End)}
}

// Shift moves the range by delta bytes.
func (r Range) Shift(delta int64) Range {
	return Range{Start: r.Start + delta, End: r.End + delta}
}

// String returns the range as "[start,end)".
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// MergeRanges folds overlapping or adjacent ranges together. The input must
// be ordered by Start.
func MergeRanges(ranges []Range) []Range {
	if len(ranges) == 0 {
		return nil
	}
	merged := []Range{ranges[0]}
	for _, r := range ranges[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			*last = last.Union(r)
			continue
		}
		merged = append(merged, r)
	}
	return merged
}
