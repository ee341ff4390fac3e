// Package formatter maps statistics service payloads to the view models shown
// in the result panels. It holds no state and performs no I/O.
package formatter

import (
	"fmt"
	"math"
	"sort"

	"github.com/abrezinsky/electionview/internal/errors"
	"github.com/abrezinsky/electionview/pkg/statsapi"
)

// Polarity classes for signed values
const (
	Positive = "positive"
	Negative = "negative"
)

// Elected badge classes
const (
	BadgeElected    = "elected-yes"
	BadgeNotElected = "elected-no"
)

// StatsView is the statistics panel: summary totals and one row per party
type StatsView struct {
	TotalVotes      int        `json:"totalVotes"`
	TotalSeats      int        `json:"totalSeats"`
	TotalCandidates int        `json:"totalCandidates"`
	Constituencies  int        `json:"constituencies"`
	Parties         []PartyRow `json:"parties"`
}

// PartyRow is one party of the statistics table
type PartyRow struct {
	Party            string  `json:"party"`
	TotalVotes       int     `json:"totalVotes"`
	VoteShare        float64 `json:"voteShare"`
	VoteShareDisplay string  `json:"voteShareDisplay"`
	SeatsWon         int     `json:"seatsWon"`
	CandidatesCount  int     `json:"candidatesCount"`
}

// IntDelta is a signed count with its display form
type IntDelta struct {
	Value    int    `json:"value"`
	Display  string `json:"display"`
	Polarity string `json:"polarity"`
}

// PercentDelta is a signed percentage with its display form
type PercentDelta struct {
	Value    float64 `json:"value"`
	Display  string  `json:"display"`
	Polarity string  `json:"polarity"`
}

// ComparisonView is the comparison panel
type ComparisonView struct {
	VoteChange        IntDelta         `json:"voteChange"`
	VoteChangePercent PercentDelta     `json:"voteChangePercent"`
	PartyChanges      []PartyChangeRow `json:"partyChanges"`
}

// PartyChangeRow is one party of the comparison table
type PartyChangeRow struct {
	Party      string   `json:"party"`
	VoteChange IntDelta `json:"voteChange"`
	SeatChange IntDelta `json:"seatChange"`
}

// CandidateView is one row of the candidates table
type CandidateView struct {
	Rank         int    `json:"rank"`
	Candidate    string `json:"candidate"`
	Party        string `json:"party"`
	Constituency string `json:"constituency"`
	Votes        int    `json:"votes"`
	Elected      bool   `json:"elected"`
	Badge        string `json:"badge"`
	BadgeLabel   string `json:"badgeLabel"`
}

// FormatStats builds the statistics panel. Totals and party rows pass through
// unchanged and in received order.
func FormatStats(stats *statsapi.ElectionStats) (*StatsView, error) {
	if stats == nil {
		return nil, errors.Malformed("body")
	}

	view := &StatsView{}
	var err error
	if view.TotalVotes, err = count(stats.TotalVotes, "totalVotes"); err != nil {
		return nil, err
	}
	if view.TotalSeats, err = count(stats.TotalSeats, "totalSeats"); err != nil {
		return nil, err
	}
	if view.TotalCandidates, err = count(stats.TotalCandidates, "totalCandidates"); err != nil {
		return nil, err
	}
	if view.Constituencies, err = count(stats.Constituencies, "constituencies"); err != nil {
		return nil, err
	}
	if stats.Parties == nil {
		return nil, errors.Malformed("parties")
	}

	view.Parties = make([]PartyRow, 0, len(stats.Parties))
	for i, p := range stats.Parties {
		field := func(name string) string { return fmt.Sprintf("parties[%d].%s", i, name) }
		row := PartyRow{Party: p.Party}
		if row.TotalVotes, err = count(p.TotalVotes, field("totalVotes")); err != nil {
			return nil, err
		}
		if p.VoteShare == nil || *p.VoteShare < 0 || *p.VoteShare > 100 || math.IsNaN(*p.VoteShare) {
			return nil, errors.Malformed(field("voteShare"))
		}
		row.VoteShare = *p.VoteShare
		row.VoteShareDisplay = fmt.Sprintf("%.2f%%", row.VoteShare)
		if row.SeatsWon, err = count(p.SeatsWon, field("seatsWon")); err != nil {
			return nil, err
		}
		if row.CandidatesCount, err = count(p.CandidatesCount, field("candidatesCount")); err != nil {
			return nil, err
		}
		view.Parties = append(view.Parties, row)
	}
	return view, nil
}

// FormatComparison builds the comparison panel. Party changes are ordered by
// descending absolute vote change; equal magnitudes keep their received order.
func FormatComparison(result *statsapi.ComparisonResult) (*ComparisonView, error) {
	if result == nil {
		return nil, errors.Malformed("body")
	}
	if result.VoteChange == nil {
		return nil, errors.Malformed("voteChange")
	}
	if result.VoteChangePercent == nil || math.IsNaN(*result.VoteChangePercent) || math.IsInf(*result.VoteChangePercent, 0) {
		return nil, errors.Malformed("voteChangePercent")
	}
	if result.PartyChanges == nil {
		return nil, errors.Malformed("partyChanges")
	}

	view := &ComparisonView{
		VoteChange:        SignedInt(*result.VoteChange),
		VoteChangePercent: SignedPercent(*result.VoteChangePercent),
		PartyChanges:      make([]PartyChangeRow, 0, len(result.PartyChanges)),
	}
	for i, pc := range result.PartyChanges {
		if pc.VoteChange == nil {
			return nil, errors.Malformed(fmt.Sprintf("partyChanges[%d].voteChange", i))
		}
		if pc.SeatChange == nil {
			return nil, errors.Malformed(fmt.Sprintf("partyChanges[%d].seatChange", i))
		}
		view.PartyChanges = append(view.PartyChanges, PartyChangeRow{
			Party:      pc.Party,
			VoteChange: SignedInt(*pc.VoteChange),
			SeatChange: SignedInt(*pc.SeatChange),
		})
	}

	sort.SliceStable(view.PartyChanges, func(i, j int) bool {
		return abs(view.PartyChanges[i].VoteChange.Value) > abs(view.PartyChanges[j].VoteChange.Value)
	})
	return view, nil
}

// FormatCandidates builds the candidates table. Rank is the 1-based position
// in the received list; no re-sorting happens here.
func FormatCandidates(rows []statsapi.CandidateRow) ([]CandidateView, error) {
	if rows == nil {
		return nil, errors.Malformed("candidates")
	}

	out := make([]CandidateView, 0, len(rows))
	for i, r := range rows {
		votes, err := count(r.Votes, fmt.Sprintf("candidates[%d].votes", i))
		if err != nil {
			return nil, err
		}
		if r.Elected == nil {
			return nil, errors.Malformed(fmt.Sprintf("candidates[%d].elected", i))
		}
		badge, label := BadgeNotElected, "No"
		if *r.Elected {
			badge, label = BadgeElected, "Yes"
		}
		out = append(out, CandidateView{
			Rank:         i + 1,
			Candidate:    r.Candidate,
			Party:        r.Party,
			Constituency: r.Constituency,
			Votes:        votes,
			Elected:      *r.Elected,
			Badge:        badge,
			BadgeLabel:   label,
		})
	}
	return out, nil
}

// SignedInt formats v with a leading "+" when v >= 0
func SignedInt(v int) IntDelta {
	return IntDelta{Value: v, Display: fmt.Sprintf("%+d", v), Polarity: polarity(v >= 0)}
}

// SignedPercent formats v with two decimals, a percent sign and a leading "+" when v >= 0
func SignedPercent(v float64) PercentDelta {
	if v == 0 {
		v = 0 // drop negative zero
	}
	return PercentDelta{Value: v, Display: fmt.Sprintf("%+.2f%%", v), Polarity: polarity(v >= 0)}
}

func polarity(nonNegative bool) string {
	if nonNegative {
		return Positive
	}
	return Negative
}

func count(v *int, field string) (int, error) {
	if v == nil || *v < 0 {
		return 0, errors.Malformed(field)
	}
	return *v, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
