// Package spawn decides which enemy type enters which lane when the spawn
// timer fires.
package spawn

import (
	"errors"
	"time"
)

// Candidate is one spawnable enemy type and its relative weight.
type Candidate struct {
	ID     string
	Weight int
}

// Request carries everything a picker may base its choice on. Roll and
// LaneRoll are uniform in [0, 1) and come from the simulation's seeded
// source, so pickers stay deterministic without owning randomness.
type Request struct {
	Elapsed  time.Duration
	Lanes    int
	Types    []Candidate
	Roll     float64
	LaneRoll float64
}

// Choice is a picker's answer. Lane is zero-based.
type Choice struct {
	TypeID string
	Lane   int
}

// Picker chooses the next spawn.
type Picker interface {
	Pick(req Request) (Choice, error)
}

var ErrNoCandidates = errors.New("spawn: no candidates")

// Weighted picks a type proportionally to its weight and a lane uniformly.
// Candidates with non-positive weight count as weight 1.
type Weighted struct{}

func (Weighted) Pick(req Request) (Choice, error) {
	if len(req.Types) == 0 || req.Lanes <= 0 {
		return Choice{}, ErrNoCandidates
	}
	total := 0
	for _, c := range req.Types {
		total += weightOf(c)
	}
	target := int(req.Roll * float64(total))
	pick := req.Types[len(req.Types)-1].ID
	for _, c := range req.Types {
		target -= weightOf(c)
		if target < 0 {
			pick = c.ID
			break
		}
	}
	lane := int(req.LaneRoll * float64(req.Lanes))
	if lane >= req.Lanes {
		lane = req.Lanes - 1
	}
	if lane < 0 {
		lane = 0
	}
	return Choice{TypeID: pick, Lane: lane}, nil
}

func weightOf(c Candidate) int {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}
