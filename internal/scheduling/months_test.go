package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthsTouched(t *testing.T) {
	from := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, []string{"2023-03", "2023-04", "2023-05"}, MonthsTouched(from, to))

	sameMonth := MonthsTouched(time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2023-03"}, sameMonth)

	yearWrap := MonthsTouched(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2023-12", "2024-01"}, yearWrap)

	// 31st of a month must not skip the following month.
	fromEnd := MonthsTouched(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, fromEnd)
}

func TestValidYearMonth(t *testing.T) {
	assert.True(t, ValidYearMonth("2024-01"))
	assert.True(t, ValidYearMonth("2024-12"))
	assert.False(t, ValidYearMonth("2024-13"))
	assert.False(t, ValidYearMonth("2024-1"))
	assert.False(t, ValidYearMonth("24-01"))
}
