package scheduling

import "time"

// Overlaps treats both slots as half-open intervals, so touching endpoints do not overlap.
func Overlaps(a, b Slot) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

type Candidate struct {
	Slot
	Conflict bool
}

// DetectConflicts flags each candidate against the existing bookings only. Candidates are
// never compared with one another.
func DetectConflicts(candidates []Slot, existing []Slot) []Candidate {
	flagged := make([]Candidate, 0, len(candidates))
	for _, slot := range candidates {
		conflict := false
		for _, booked := range existing {
			if Overlaps(slot, booked) {
				conflict = true
				break
			}
		}
		flagged = append(flagged, Candidate{Slot: slot, Conflict: conflict})
	}
	return flagged
}

// ConflictFree marks every candidate as available. Used where overlap is not enforced.
func ConflictFree(candidates []Slot) []Candidate {
	flagged := make([]Candidate, 0, len(candidates))
	for _, slot := range candidates {
		flagged = append(flagged, Candidate{Slot: slot})
	}
	return flagged
}

// Span returns the smallest window containing every slot.
func Span(slots []Slot) (Slot, bool) {
	if len(slots) == 0 {
		return Slot{}, false
	}
	span := slots[0]
	for _, slot := range slots[1:] {
		if slot.Start.Before(span.Start) {
			span.Start = slot.Start
		}
		if slot.End.After(span.End) {
			span.End = slot.End
		}
	}
	return span, true
}

func Available(candidates []Candidate) []Slot {
	slots := make([]Slot, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.Conflict {
			slots = append(slots, candidate.Slot)
		}
	}
	return slots
}

func CountConflicts(candidates []Candidate) int {
	count := 0
	for _, candidate := range candidates {
		if candidate.Conflict {
			count++
		}
	}
	return count
}

func SlotOf(start time.Time, minutes int) Slot {
	return Slot{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
}
