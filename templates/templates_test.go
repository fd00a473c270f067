package templates

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	yesNo, ok := r.Resolve("yes-no")
	require.True(t, ok)
	assert.Equal(t, []string{"Yes", "No"}, yesNo.Source.PollOptions(time.Now()))
	assert.Equal(t, 30, yesNo.DefaultDuration)
	assert.False(t, yesNo.Recurring())

	_, ok = r.Resolve("no-such-template")
	assert.False(t, ok)

	quick, ok := r.Resolve("food-choice")
	require.True(t, ok)
	assert.True(t, quick.Quick)
}

func TestRegistryAllSorted(t *testing.T) {
	r := NewRegistry()

	all := r.All()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Key, all[i].Key)
	}
}

func TestRecurringTemplates(t *testing.T) {
	r := NewRegistry()

	recurring := r.Recurring()
	require.Len(t, recurring, 1)
	assert.Equal(t, "session-plan", recurring[0].Key)
	assert.Equal(t, time.Sunday, recurring[0].Schedule.Weekday)
}

func TestGeneratedOptions(t *testing.T) {
	r := NewRegistry()

	tmpl, ok := r.Resolve("session-plan")
	require.True(t, ok)

	// A fixed reference date keeps the generated labels predictable.
	now := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC) // a Monday
	options := tmpl.Source.PollOptions(now)

	require.Len(t, options, 5)
	assert.Equal(t, "Tuesday (Jun 4)", options[0])
	assert.Equal(t, "Saturday (Jun 8)", options[4])
}

func TestStaticOptionsCopies(t *testing.T) {
	source := StaticOptions{"a", "b"}

	options := source.PollOptions(time.Now())
	options[0] = "mutated"

	assert.Equal(t, "a", source.PollOptions(time.Now())[0])
}

func TestRegisterValidation(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&Template{Name: "missing key", Source: StaticOptions{"a", "b"}})
	assert.Error(t, err)

	err = r.Register(&Template{Key: "no-source"})
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	content := `
templates:
  - key: team-retro
    name: Team Retro
    emoji: "🔄"
    description: Weekly retrospective mood check
    question: How did this week feel?
    options: ["Great", "Okay", "Rough"]
    defaultDurationMinutes: 120
    schedule:
      weekday: 5
      hour: 16
      minute: 30
      timezone: Europe/Amsterdam
  - key: lunch-run
    name: Lunch Run
    options: ["In", "Out"]
    quick: true
`

	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := NewRegistry()
	require.NoError(t, r.LoadFile(path))

	retro, ok := r.Resolve("team-retro")
	require.True(t, ok)
	assert.Equal(t, 120, retro.DefaultDuration)
	assert.Equal(t, "How did this week feel?", retro.Question)
	require.True(t, retro.Recurring())
	assert.Equal(t, time.Friday, retro.Schedule.Weekday)
	assert.Equal(t, 16, retro.Schedule.Hour)
	assert.Equal(t, 30, retro.Schedule.Minute)
	assert.Equal(t, "Europe/Amsterdam", retro.Schedule.Timezone)

	// Absent duration falls back to the catalog default.
	lunch, ok := r.Resolve("lunch-run")
	require.True(t, ok)
	assert.Equal(t, DefaultDuration, lunch.DefaultDuration)
	assert.True(t, lunch.Quick)
}

func TestLoadFileRejectsEmptyOptions(t *testing.T) {
	content := `
templates:
  - key: broken
    name: Broken
`
	path := filepath.Join(t.TempDir(), "templates.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r := NewRegistry()
	assert.Error(t, r.LoadFile(path))
}
