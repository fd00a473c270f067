package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirelion/quorum/templates"
)

func TestNextRunStrictlyFuture(t *testing.T) {
	schedule := templates.Schedule{
		Weekday:  time.Sunday,
		Hour:     18,
		Minute:   0,
		Timezone: "America/New_York",
	}

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
	}{
		{"midweek", time.Date(2024, 3, 6, 12, 0, 0, 0, loc)},
		{"same day before slot", time.Date(2024, 3, 10, 9, 0, 0, 0, loc)},
		{"exactly on the slot", time.Date(2024, 3, 10, 18, 0, 0, 0, loc)},
		{"same day after slot", time.Date(2024, 3, 10, 20, 0, 0, 0, loc)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next, err := NextRun(schedule, tc.now)
			require.NoError(t, err)

			assert.True(t, next.After(tc.now), "next run %s must be strictly after %s", next, tc.now)

			local := next.In(loc)
			assert.Equal(t, time.Sunday, local.Weekday())
			assert.Equal(t, 18, local.Hour())
			assert.Equal(t, 0, local.Minute())
		})
	}
}

func TestNextRunOnTheSlotAdvancesAWeek(t *testing.T) {
	schedule := templates.Schedule{
		Weekday:  time.Sunday,
		Hour:     18,
		Minute:   0,
		Timezone: "America/New_York",
	}

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	onSlot := time.Date(2024, 3, 17, 18, 0, 0, 0, loc)
	next, err := NextRun(schedule, onSlot)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 24, 18, 0, 0, 0, loc), next)
}

func TestNextRunAcrossDaylightSaving(t *testing.T) {
	// US DST starts 2024-03-10 and ends 2024-11-03. Chaining NextRun
	// across both transitions must keep the local wall clock fixed at
	// Sunday 18:00, one calendar week apart.
	schedule := templates.Schedule{
		Weekday:  time.Sunday,
		Hour:     18,
		Minute:   0,
		Timezone: "America/New_York",
	}

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)
	prev, err := NextRun(schedule, now)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		next, err := NextRun(schedule, prev)
		require.NoError(t, err)

		assert.True(t, next.After(prev))

		local := next.In(loc)
		assert.Equal(t, time.Sunday, local.Weekday())
		assert.Equal(t, 18, local.Hour())
		assert.Equal(t, 0, local.Minute())

		// Exactly one week apart on the local calendar, even when the
		// UTC distance is 167 or 169 hours.
		prevLocal := prev.In(loc)
		assert.Equal(t, prevLocal.AddDate(0, 0, 7).Format("2006-01-02 15:04"), local.Format("2006-01-02 15:04"))

		prev = next
	}
}

func TestNextRunDefaultsToUTC(t *testing.T) {
	schedule := templates.Schedule{Weekday: time.Monday, Hour: 9, Minute: 30}

	now := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)
	next, err := NextRun(schedule, now)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC), next)
}

func TestResolveLocation(t *testing.T) {
	loc, err := resolveLocation("Europe/Amsterdam")
	require.NoError(t, err)
	assert.Equal(t, "Europe/Amsterdam", loc.String())

	// Abbreviations resolve through the timezone database fallback.
	loc, err = resolveLocation("JST")
	require.NoError(t, err)
	assert.NotNil(t, loc)

	_, err = resolveLocation("Not/AZone")
	assert.Error(t, err)
}

func TestNextRunRejectsBadTimezone(t *testing.T) {
	schedule := templates.Schedule{Weekday: time.Monday, Hour: 9, Timezone: "Not/AZone"}
	_, err := NextRun(schedule, time.Now())
	assert.Error(t, err)
}
