package timegrid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelsDayWindow(t *testing.T) {
	g := Grid{StartHour: 6, EndHour: 22, StepMinutes: 30}
	labels := g.Labels()

	require.Len(t, labels, 34) // hours 6 through 22 inclusive, two slots each
	assert.Equal(t, "6:00 AM", labels[0])
	assert.Equal(t, "11:30 AM", labels[11])
	assert.Equal(t, "12:00 PM", labels[12])
	assert.Equal(t, "10:30 PM", labels[33])
}

func TestLabelsWrapPastMidnight(t *testing.T) {
	g := Grid{StartHour: 4, EndHour: 3, StepMinutes: 30}
	labels := g.Labels()

	require.Len(t, labels, 48)
	assert.Equal(t, "4:00 AM", labels[0])
	assert.Equal(t, "12:00 AM", labels[40])
	assert.Equal(t, "3:30 AM", labels[47])
}

func TestLabelsAreStrictlyIncreasingInstants(t *testing.T) {
	g := Grid{StartHour: 4, EndHour: 3, StepMinutes: 30}
	var prev time.Time
	for i, label := range g.Labels() {
		instant, err := g.ToInstant("2025-06-01", label, time.UTC)
		require.NoError(t, err)
		if i > 0 {
			assert.True(t, instant.After(prev), "label %q must come after %q", label, g.Labels()[i-1])
		}
		prev = instant
	}
}

func TestToInstant(t *testing.T) {
	g := Grid{StartHour: 6, EndHour: 22, StepMinutes: 30}

	instant, err := g.ToInstant("2025-06-01", "2:00 PM", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC), instant)

	instant, err = g.ToInstant("2025-06-01", "12:30 AM", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC), instant)
}

func TestToInstantRollsOverOnWrappedGrid(t *testing.T) {
	g := Grid{StartHour: 4, EndHour: 3, StepMinutes: 30}

	instant, err := g.ToInstant("2025-06-01", "2:00 AM", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 2, 2, 0, 0, 0, time.UTC), instant)

	instant, err = g.ToInstant("2025-06-01", "4:00 AM", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 4, 0, 0, 0, time.UTC), instant)
}

func TestToInstantInvalidLabel(t *testing.T) {
	g := Grid{StartHour: 6, EndHour: 22, StepMinutes: 30}

	_, err := g.ToInstant("2025-06-01", "25:00", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)

	_, err = g.ToInstant("not-a-date", "2:00 PM", time.UTC)
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)
}
