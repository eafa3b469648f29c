package repositories

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestampLayout_LexicalOrderIsChronological(t *testing.T) {
	second := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	// Fractional widths that a trimming encoding would misorder.
	times := []time.Time{
		second.Add(123 * time.Millisecond),
		second,
		second.Add(120 * time.Millisecond),
		second.Add(-1 * time.Second),
		second.Add(1 * time.Nanosecond),
	}

	formatted := make([]string, len(times))
	for i, ts := range times {
		formatted[i] = ts.Format(timestampLayout)
	}

	sort.Strings(formatted)

	for i := 1; i < len(formatted); i++ {
		prev, err := time.Parse(time.RFC3339Nano, formatted[i-1])
		assert.NoError(t, err)
		cur, err := time.Parse(time.RFC3339Nano, formatted[i])
		assert.NoError(t, err)
		assert.False(t, cur.Before(prev), "lexical order diverged from chronological: %s before %s", formatted[i-1], formatted[i])
	}
}

func TestTimeProp_RoundTrip(t *testing.T) {
	ts := time.Date(2026, 9, 1, 10, 0, 0, 123000000, time.UTC)

	props := map[string]any{"created_at": ts.Format(timestampLayout)}
	assert.True(t, timeProp(props, "created_at").Equal(ts))

	// Values written before the fixed-width layout still parse.
	props = map[string]any{"created_at": ts.Format(time.RFC3339Nano)}
	assert.True(t, timeProp(props, "created_at").Equal(ts))

	assert.True(t, timeProp(map[string]any{}, "created_at").IsZero())
	assert.True(t, timeProp(map[string]any{"created_at": 42}, "created_at").IsZero())
}
