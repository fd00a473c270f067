package polls

import (
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

const (
	MinOptions      = 2
	MaxOptions      = 10
	MaxOptionLength = 100

	// MaxDuration bounds interactive polls to one day, in minutes.
	MaxDuration = 24 * 60

	// MaxRecurringDuration bounds scheduler-created polls to one week, so
	// a multi-day session poll can't outlive its own next occurrence.
	MaxRecurringDuration = 7 * 24 * 60

	// OptionDelimiter separates options in raw command input.
	OptionDelimiter = ";"
)

// pollCounter breaks ties between ids generated within the same
// millisecond. Process-lifetime monotonic.
var pollCounter uint64

// ValidateOptions splits raw input on the delimiter, trims the pieces and
// drops empty ones, then checks count, length and duplicates. Every
// violation is reported, not just the first.
func ValidateOptions(raw string, delimiter string) ([]string, error) {
	var options []string
	for _, piece := range strings.Split(raw, delimiter) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			options = append(options, piece)
		}
	}

	return ValidateOptionList(options)
}

// ValidateOptionList is ValidateOptions for options that are already split
// and trimmed, as when template options get combined with custom ones.
func ValidateOptionList(options []string) ([]string, error) {
	var problems []string

	if len(options) < MinOptions {
		problems = append(problems, fmt.Sprintf("You need at least %d options for a poll!", MinOptions))
	}
	if len(options) > MaxOptions {
		problems = append(problems, fmt.Sprintf("Maximum %d options allowed!", MaxOptions))
	}

	seen := make(map[string]bool, len(options))
	unique := make([]string, 0, len(options))
	hasDuplicates := false
	tooLong := false
	for _, opt := range options {
		if seen[opt] {
			hasDuplicates = true
			continue
		}
		seen[opt] = true
		unique = append(unique, opt)

		// Characters, not bytes, so emoji-heavy options aren't penalized.
		if utf8.RuneCountInString(opt) > MaxOptionLength {
			tooLong = true
		}
	}

	if hasDuplicates {
		problems = append(problems, "Duplicate options are not allowed!")
	}
	if tooLong {
		problems = append(problems, fmt.Sprintf("Options must be %d characters or less!", MaxOptionLength))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	return unique, nil
}

// GenerateID builds a poll id that is unique for the process lifetime, even
// for two calls in the same millisecond by the same creator: the counter
// breaks ties, the random suffix is defense in depth. The result contains
// the field separator used by action tokens, so it must always be
// reassembled positionally, never naively split.
func GenerateID(creatorID string) string {
	counter := atomic.AddUint64(&pollCounter, 1)
	return fmt.Sprintf("poll_%d_%s_%d_%d", time.Now().UnixMilli(), creatorID, counter, rand.Intn(10000))
}

// NewPoll builds the initial state for an interactive poll.
func NewPoll(question string, options []string, durationMinutes int, anonymous bool, creatorID string) (*Poll, error) {
	return newPoll(question, options, durationMinutes, MaxDuration, anonymous, creatorID)
}

// NewScheduledPoll is NewPoll with the larger duration bound used by
// recurring jobs.
func NewScheduledPoll(question string, options []string, durationMinutes int, anonymous bool, creatorID string) (*Poll, error) {
	return newPoll(question, options, durationMinutes, MaxRecurringDuration, anonymous, creatorID)
}

func newPoll(question string, options []string, durationMinutes int, maxDuration int, anonymous bool, creatorID string) (*Poll, error) {
	var problems []string

	if strings.TrimSpace(question) == "" {
		problems = append(problems, "The poll needs a question!")
	}
	if durationMinutes <= 0 || durationMinutes > maxDuration {
		problems = append(problems, fmt.Sprintf("Duration must be between 1 and %d minutes!", maxDuration))
	}
	if len(options) < MinOptions || len(options) > MaxOptions {
		problems = append(problems, fmt.Sprintf("A poll needs between %d and %d options!", MinOptions, MaxOptions))
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	now := time.Now()
	return &Poll{
		Question:  question,
		Options:   options,
		Votes:     make(map[string]int),
		Anonymous: anonymous,
		CreatorID: creatorID,
		CreatedAt: now,
		EndTime:   now.Add(time.Duration(durationMinutes) * time.Minute),
		Active:    true,
	}, nil
}
