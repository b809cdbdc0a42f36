package service

import (
	"strings"

	"github.com/lenilani/leadscout/internal/config"
	"github.com/lenilani/leadscout/internal/source"
)

// Scorer assigns an ideal-customer-profile fitness score in [0,100] to a
// candidate. Scoring is pure and total: malformed or missing fields simply
// fail to earn points, they never produce an error.
type Scorer interface {
	Score(candidate *source.Candidate) float64
	Threshold() float64
}

// ProfileScorer scores candidates against configured ICP weights.
type ProfileScorer struct {
	profile *config.ICPConfig
}

// NewProfileScorer creates a scorer for the given profile. The profile is
// read-only to the scorer; edits take effect on the next run.
// Parameters:
//   - profile: ICP weights and threshold.
// Returns:
//   - *ProfileScorer: initialized scorer.
func NewProfileScorer(profile *config.ICPConfig) *ProfileScorer {
	return &ProfileScorer{profile: profile}
}

// Threshold returns the minimum admissible score.
func (s *ProfileScorer) Threshold() float64 {
	return s.profile.ScoreThreshold
}

// Score computes the ICP fitness of a candidate.
//
// Base 50, plus: industry weight (best match), location weight (best match),
// company-size band weight, up to 15 for pain-point mentions, up to 10 for
// technology indicators, 5 for a website, 5 for reachable contact info.
// Clamped to 100. Scoring the same candidate twice always yields the same
// score; admission decisions depend on it.
// Parameters:
//   - candidate: candidate to score.
// Returns:
//   - float64: fitness score in [0,100].
func (s *ProfileScorer) Score(candidate *source.Candidate) float64 {
	score := 50.0

	industry := strings.ToLower(candidate.Industry)
	score += matchWeight(industry, s.profile.IndustryWeights)

	location := strings.ToLower(candidate.Location + " " + candidate.Address)
	score += matchWeight(location, s.profile.LocationWeights)

	score += s.profile.SizeWeights[sizeBand(candidate.EmployeeCount)]

	description := strings.ToLower(candidate.Description)
	painHits := 0
	for _, pain := range s.profile.PainPoints {
		if strings.Contains(description, pain) {
			painHits++
		}
	}
	score += min(float64(painHits)*3, 15)

	website := strings.ToLower(candidate.Website)
	techHits := 0
	for _, indicator := range s.profile.TechIndicators {
		if strings.Contains(description, indicator) || strings.Contains(website, indicator) {
			techHits++
		}
	}
	score += min(float64(techHits)*2, 10)

	if candidate.Website != "" {
		score += 5
	}
	if candidate.Email != "" || candidate.Phone != "" {
		score += 5
	}

	return min(score, 100)
}

// matchWeight returns the weight of the best matching key in weights, or 0
// when nothing matches. Overlapping keys ("honolulu" inside an address that
// also mentions "hawaii") resolve to the highest weight, never to whichever
// key map iteration visits first.
func matchWeight(text string, weights map[string]float64) float64 {
	best := 0.0
	matched := false
	for key, weight := range weights {
		if !strings.Contains(text, key) {
			continue
		}
		if !matched || weight > best {
			best = weight
			matched = true
		}
	}
	return best
}

// sizeBand maps an employee count to its ICP weight band. Unknown counts
// (zero) land in the smallest band.
func sizeBand(employees int) string {
	switch {
	case employees >= 1000:
		return "1000+"
	case employees >= 501:
		return "501-1000"
	case employees >= 251:
		return "251-500"
	case employees >= 101:
		return "101-250"
	case employees >= 51:
		return "51-100"
	case employees >= 10:
		return "10-50"
	default:
		return "1-10"
	}
}
