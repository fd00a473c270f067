// Package templates holds the poll template catalog: named option sets with
// default durations, optionally carrying a weekly auto-schedule.
package templates

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"emperror.dev/errors"
)

const (
	// DefaultDuration is used when neither the template nor the caller
	// sets one, in minutes.
	DefaultDuration = 60
)

// Schedule describes a weekly recurrence slot in a fixed timezone.
type Schedule struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Timezone string
}

// OptionSource yields the option list for a poll built from a template.
// Generated sources are invoked once, at poll creation time.
type OptionSource interface {
	PollOptions(now time.Time) []string
}

// StaticOptions is a fixed option list.
type StaticOptions []string

func (s StaticOptions) PollOptions(time.Time) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// GeneratedOptions computes a date-dependent option list.
type GeneratedOptions func(now time.Time) []string

func (g GeneratedOptions) PollOptions(now time.Time) []string {
	return g(now)
}

type Template struct {
	Key         string
	Name        string
	Emoji       string
	Description string

	Source OptionSource

	// Question asked when this template is created by the scheduler.
	Question string

	// DefaultDuration in minutes, used when the caller doesn't override it.
	DefaultDuration int

	// Quick polls are lightweight option sets surfaced separately in the
	// command choices.
	Quick bool

	Schedule *Schedule
}

// Recurring reports whether the scheduler should auto-create this template.
func (t *Template) Recurring() bool {
	return t.Schedule != nil
}

// Registry is the template catalog. Safe for concurrent reads after setup.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

func NewRegistry() *Registry {
	r := &Registry{
		templates: make(map[string]*Template),
	}

	for _, t := range builtinTemplates() {
		r.templates[t.Key] = t
	}

	return r
}

// Resolve looks up a template by key.
func (r *Registry) Resolve(key string) (*Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.templates[key]
	return t, ok
}

// Register adds or replaces a template.
func (r *Registry) Register(t *Template) error {
	if t.Key == "" {
		return errors.New("template key is required")
	}
	if t.Source == nil {
		return errors.Errorf("template %q has no option source", t.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.Key] = t
	return nil
}

// All returns every template sorted by key.
func (r *Registry) All() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Recurring returns the templates that carry an auto-schedule.
func (r *Registry) Recurring() []*Template {
	var out []*Template
	for _, t := range r.All() {
		if t.Recurring() {
			out = append(out, t)
		}
	}
	return out
}

func builtinTemplates() []*Template {
	return []*Template{
		{
			Key:             "yes-no",
			Name:            "Yes/No Poll",
			Emoji:           "✅",
			Description:     "Simple yes or no question",
			Source:          StaticOptions{"Yes", "No"},
			DefaultDuration: 30,
		},
		{
			Key:             "rating",
			Name:            "5-Star Rating",
			Emoji:           "⭐",
			Description:     "1-5 star rating",
			Source:          StaticOptions{"⭐ (1)", "⭐⭐ (2)", "⭐⭐⭐ (3)", "⭐⭐⭐⭐ (4)", "⭐⭐⭐⭐⭐ (5)"},
			DefaultDuration: DefaultDuration,
		},
		{
			Key:             "satisfaction",
			Name:            "Satisfaction Survey",
			Emoji:           "📋",
			Description:     "Satisfaction level survey",
			Source:          StaticOptions{"Very Satisfied", "Satisfied", "Neutral", "Dissatisfied", "Very Dissatisfied"},
			DefaultDuration: DefaultDuration,
		},
		{
			Key:             "agreement",
			Name:            "Agreement Scale",
			Emoji:           "🤝",
			Description:     "Level of agreement",
			Source:          StaticOptions{"Strongly Agree", "Agree", "Neutral", "Disagree", "Strongly Disagree"},
			DefaultDuration: DefaultDuration,
		},
		{
			Key:             "frequency",
			Name:            "Frequency Poll",
			Emoji:           "🔁",
			Description:     "How often something occurs",
			Source:          StaticOptions{"Always", "Often", "Sometimes", "Rarely", "Never"},
			DefaultDuration: DefaultDuration,
		},
		{
			Key:             "priority",
			Name:            "Priority Ranking",
			Emoji:           "🎯",
			Description:     "Priority level assessment",
			Source:          StaticOptions{"High Priority", "Medium Priority", "Low Priority", "Not Important"},
			DefaultDuration: DefaultDuration,
		},
		{
			Key:             "weekend-plans",
			Name:            "Weekend Plans",
			Emoji:           "🚀",
			Source:          StaticOptions{"Stay Home", "Go Out", "Visit Friends", "Work/Study", "Travel"},
			DefaultDuration: DefaultDuration,
			Quick:           true,
		},
		{
			Key:             "food-choice",
			Name:            "Food Choice",
			Emoji:           "🚀",
			Source:          StaticOptions{"Pizza", "Burgers", "Asian Food", "Mexican Food", "Italian Food", "Other"},
			DefaultDuration: DefaultDuration,
			Quick:           true,
		},
		{
			Key:             "meeting-time",
			Name:            "Meeting Time",
			Emoji:           "🚀",
			Source:          StaticOptions{"Morning (9-11 AM)", "Midday (11 AM-1 PM)", "Afternoon (1-4 PM)", "Evening (4-6 PM)"},
			DefaultDuration: DefaultDuration,
			Quick:           true,
		},
		{
			Key:             "game-night",
			Name:            "Game Night",
			Emoji:           "🚀",
			Source:          StaticOptions{"Board Games", "Video Games", "Card Games", "Trivia", "Party Games"},
			DefaultDuration: DefaultDuration,
			Quick:           true,
		},
		{
			Key:             "session-plan",
			Name:            "Session Planner",
			Emoji:           "📅",
			Description:     "Weekly session planning",
			Question:        "What day works best for our next session?",
			Source:          GeneratedOptions(upcomingDayOptions),
			DefaultDuration: 3 * 24 * 60,
			Schedule: &Schedule{
				Weekday: time.Sunday,
				Hour:    18,
				Minute:  0,
			},
		},
	}
}

// upcomingDayOptions lists the next five days as poll options, so the
// session planner always offers concrete dates.
func upcomingDayOptions(now time.Time) []string {
	options := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		day := now.AddDate(0, 0, i)
		options = append(options, fmt.Sprintf("%s (%s)", day.Weekday(), day.Format("Jan 2")))
	}
	return options
}
