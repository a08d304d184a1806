package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func minuteSlot(start, end int) Slot {
	base := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	return Slot{
		Start: base.Add(time.Duration(start) * time.Minute),
		End:   base.Add(time.Duration(end) * time.Minute),
	}
}

func TestOverlapsIsSymmetricAndReflexive(t *testing.T) {
	pairs := [][2]Slot{
		{minuteSlot(0, 30), minuteSlot(15, 45)},
		{minuteSlot(0, 30), minuteSlot(30, 60)},
		{minuteSlot(0, 120), minuteSlot(30, 60)},
		{minuteSlot(0, 30), minuteSlot(60, 90)},
		{minuteSlot(540, 570), minuteSlot(555, 585)},
	}
	for _, pair := range pairs {
		assert.Equal(t, Overlaps(pair[0], pair[1]), Overlaps(pair[1], pair[0]))
		assert.True(t, Overlaps(pair[0], pair[0]))
		assert.True(t, Overlaps(pair[1], pair[1]))
	}
}

func TestTouchingSlotsDoNotOverlap(t *testing.T) {
	assert.False(t, Overlaps(minuteSlot(0, 30), minuteSlot(30, 60)))
	assert.False(t, Overlaps(minuteSlot(30, 60), minuteSlot(0, 30)))
	assert.True(t, Overlaps(minuteSlot(540, 570), minuteSlot(555, 585)))
}

func TestDetectConflictsOnlyComparesAgainstExisting(t *testing.T) {
	candidates := []Slot{
		minuteSlot(540, 570),
		minuteSlot(555, 585),
		minuteSlot(600, 630),
	}
	existing := []Slot{minuteSlot(590, 610)}

	flagged := DetectConflicts(candidates, existing)

	assert.False(t, flagged[0].Conflict)
	assert.False(t, flagged[1].Conflict, "candidates must not conflict with each other")
	assert.True(t, flagged[2].Conflict)
	assert.Equal(t, 1, CountConflicts(flagged))
	assert.Equal(t, []Slot{candidates[0], candidates[1]}, Available(flagged))
}

func TestConflictFreeNeverFlags(t *testing.T) {
	flagged := ConflictFree([]Slot{minuteSlot(0, 30), minuteSlot(0, 30)})
	assert.Equal(t, 0, CountConflicts(flagged))
	assert.Len(t, Available(flagged), 2)
}

func TestSpan(t *testing.T) {
	_, ok := Span(nil)
	assert.False(t, ok)

	span, ok := Span([]Slot{minuteSlot(600, 630), minuteSlot(540, 570), minuteSlot(700, 745)})
	assert.True(t, ok)
	assert.Equal(t, minuteSlot(540, 745), span)
}
