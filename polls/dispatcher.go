package polls

import (
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"

	"github.com/cirelion/quorum/common"
)

const (
	ActionVote    = "vote"
	ActionResults = "results"
	ActionEnd     = "end"

	actionSeparator = "_"

	// A vote token on a generated id has at least 6 fields and a
	// results/end token at least 5, but custom ids only promise 4: the
	// verb, two id fields, and the index or a third id field.
	minActionFields = 4
)

// Action is a decoded UI action token.
type Action struct {
	Verb   string
	PollID string

	// Option is only meaningful when Verb is ActionVote.
	Option int
}

// EncodeVoteAction builds the wire token for a vote button.
func EncodeVoteAction(pollID string, option int) string {
	return ActionVote + actionSeparator + pollID + actionSeparator + strconv.Itoa(option)
}

// EncodeAction builds the wire token for a results or end control.
func EncodeAction(verb string, pollID string) string {
	return verb + actionSeparator + pollID
}

// DecodeAction parses an action token. Poll ids contain the separator
// themselves, so fields are consumed positionally: the verb is first, the
// last field is the option index only for votes, and everything in between
// is rejoined to reconstitute the id.
func DecodeAction(token string) (*Action, error) {
	fields := strings.Split(token, actionSeparator)
	if len(fields) < minActionFields {
		return nil, ErrMalformedAction
	}

	action := &Action{Verb: fields[0], Option: -1}

	switch action.Verb {
	case ActionVote:
		option, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return nil, ErrMalformedAction
		}
		action.Option = option
		action.PollID = strings.Join(fields[1:len(fields)-1], actionSeparator)
	case ActionResults, ActionEnd:
		action.PollID = strings.Join(fields[1:], actionSeparator)
	default:
		return nil, ErrMalformedAction
	}

	return action, nil
}

// IsActionToken reports whether a component custom id belongs to the poll
// action namespace at all, so foreign components can be ignored without
// error replies.
func IsActionToken(token string) bool {
	for _, verb := range []string{ActionVote, ActionResults, ActionEnd} {
		if strings.HasPrefix(token, verb+actionSeparator) {
			return true
		}
	}
	return false
}

// PermissionCheck decides whether a requester may end a poll. What counts
// as a moderator is up to the transport layer.
type PermissionCheck func(requesterID string) bool

// systemCheck is used when the process itself ends a poll (expiry timer).
func systemCheck(string) bool { return true }

// OptionResult is one option's share of a results computation.
type OptionResult struct {
	Option     string
	Votes      int
	Percentage int

	// Voters is nil for anonymous polls.
	Voters []string
}

// Results is a read-only tally snapshot for rendering.
type Results struct {
	PollID    string
	Question  string
	Total     int
	Anonymous bool
	Options   []OptionResult
}

// Dispatcher applies decoded actions against the store, enforcing the
// Open -> Ended state machine. It performs no I/O itself; callers render
// from the returned state, which is always a snapshot so rendering never
// races with concurrent votes.
type Dispatcher struct {
	store *Store
}

func NewDispatcher(store *Store) *Dispatcher {
	return &Dispatcher{store: store}
}

// Vote records a voter's choice on an open poll. A voter who already voted
// has their previous choice replaced, so switching never stacks.
func (d *Dispatcher) Vote(pollID string, voterID string, option int) (*Poll, error) {
	poll, err := d.store.CastVote(pollID, voterID, option)
	if err != nil {
		return nil, err
	}

	common.VotesCast.Inc()
	return poll, nil
}

// Results computes the per-option tally from a consistent snapshot.
// Anonymous polls refuse until they have ended; non-anonymous results
// include voter identities.
func (d *Dispatcher) Results(pollID string) (*Results, error) {
	poll, ok := d.store.Snapshot(pollID)
	if !ok {
		return nil, ErrPollNotFound
	}
	if poll.Anonymous && poll.Active {
		return nil, ErrResultsWithheld
	}

	results := &Results{
		PollID:    poll.ID,
		Question:  poll.Question,
		Total:     poll.TotalVotes(),
		Anonymous: poll.Anonymous,
		Options:   make([]OptionResult, 0, len(poll.Options)),
	}

	for i, option := range poll.Options {
		res := OptionResult{
			Option:     option,
			Votes:      poll.VoteCount(i),
			Percentage: poll.Percentage(i),
		}
		if !poll.Anonymous {
			res.Voters = poll.Voters(i)
		}
		results.Options = append(results.Options, res)
	}

	return results, nil
}

// End transitions a poll to its terminal state. Ending an already ended
// poll is a safe no-op, which lets stale expiry timers fire harmlessly.
func (d *Dispatcher) End(pollID string, requesterID string, allowed PermissionCheck) (*Poll, error) {
	poll, ok := d.store.Snapshot(pollID)
	if !ok {
		return nil, ErrPollNotFound
	}
	if !poll.Active {
		return poll, nil
	}
	if allowed == nil || !allowed(requesterID) {
		return nil, ErrPermissionDenied
	}

	ended, ok := d.store.EndPoll(pollID)
	if !ok {
		return nil, ErrPollNotFound
	}
	return ended, nil
}

// StartExpiryTimer arms the one-shot expiry for a poll and invokes onEnded
// with the final state. The timer is in-memory only: it does not survive a
// restart, and ending a poll early leaves it pending, which is fine because
// End is idempotent.
func (d *Dispatcher) StartExpiryTimer(pollID string, endTime time.Time, onEnded func(*Poll)) {
	go func() {
		timer := time.NewTimer(time.Until(endTime))
		defer timer.Stop()
		<-timer.C

		poll, err := d.End(pollID, "system", systemCheck)
		if err != nil {
			logger.WithError(err).WithField("poll", pollID).Debug("expiry fired for missing poll")
			return
		}

		if onEnded != nil {
			onEnded(poll)
		}
	}()
}

// userMessage maps a dispatch error to the reply shown to the requester.
// Everything unexpected collapses into a generic retry message.
func userMessage(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return "❌ " + validation.Error()
	}

	switch {
	case errors.Is(err, ErrPollNotFound):
		return "❌ This poll no longer exists!"
	case errors.Is(err, ErrPollEnded):
		return "❌ This poll has ended!"
	case errors.Is(err, ErrInvalidOption):
		return "❌ Invalid option selected!"
	case errors.Is(err, ErrMalformedAction):
		return "❌ Invalid button format!"
	case errors.Is(err, ErrPermissionDenied):
		return "❌ Only the poll creator or moderators can end this poll!"
	case errors.Is(err, ErrResultsWithheld):
		return "🔒 This poll is anonymous. Results will be shown when it ends."
	default:
		return "❌ An error occurred. Please try again."
	}
}

// errorReason labels a dispatch error for metrics.
func errorReason(err error) string {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return "invalid_input"
	}

	switch {
	case errors.Is(err, ErrPollNotFound):
		return "not_found"
	case errors.Is(err, ErrPollEnded):
		return "ended"
	case errors.Is(err, ErrInvalidOption):
		return "invalid_option"
	case errors.Is(err, ErrMalformedAction):
		return "malformed"
	case errors.Is(err, ErrPermissionDenied):
		return "permission"
	case errors.Is(err, ErrResultsWithheld):
		return "withheld"
	default:
		return "internal"
	}
}
