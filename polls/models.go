package polls

import (
	"math"
	"sort"
	"time"
)

// Poll is the state of a single poll. Owned by the Store; mutate it only
// through Store operations.
type Poll struct {
	ID       string
	Question string
	Options  []string

	// Votes maps voter id to option index, at most one entry per voter.
	Votes map[string]int

	Anonymous bool
	CreatorID string

	CreatedAt time.Time
	EndTime   time.Time

	// Active is true from creation until the poll is ended, and never
	// flips back.
	Active bool
}

// snapshot returns a deep copy that is safe to read outside the store's
// lock while other goroutines keep voting.
func (p *Poll) snapshot() *Poll {
	cp := *p
	cp.Options = append([]string(nil), p.Options...)
	cp.Votes = make(map[string]int, len(p.Votes))
	for voterID, v := range p.Votes {
		cp.Votes[voterID] = v
	}
	return &cp
}

// TotalVotes is the number of distinct voters.
func (p *Poll) TotalVotes() int {
	return len(p.Votes)
}

// VoteCount returns how many voters picked the given option.
func (p *Poll) VoteCount(option int) int {
	count := 0
	for _, v := range p.Votes {
		if v == option {
			count++
		}
	}
	return count
}

// Percentage returns the option's share of all votes rounded to the nearest
// integer, 0 when nobody voted yet.
func (p *Poll) Percentage(option int) int {
	total := p.TotalVotes()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(p.VoteCount(option)) / float64(total) * 100))
}

// Voters returns the ids of everyone who picked the given option, sorted
// for stable rendering.
func (p *Poll) Voters(option int) []string {
	var voters []string
	for userID, v := range p.Votes {
		if v == option {
			voters = append(voters, userID)
		}
	}
	sort.Strings(voters)
	return voters
}
