package service

import (
	"testing"

	"github.com/lenilani/leadscout/internal/config"
	"github.com/lenilani/leadscout/internal/source"
)

func testICPConfig() *config.ICPConfig {
	return &config.ICPConfig{
		IndustryWeights: map[string]float64{"tourism": 25, "retail": 15},
		LocationWeights: map[string]float64{"honolulu": 15, "maui": 12},
		SizeWeights: map[string]float64{
			"1-10": 5, "10-50": 20, "51-100": 25, "1000+": 5,
		},
		PainPoints:     []string{"manual processes", "automation", "efficiency", "scaling challenges", "customer insights", "operational costs"},
		TechIndicators: []string{"online booking", "crm", "cloud", "api", "ecommerce", "mobile app"},
		ScoreThreshold: 70.0,
	}
}

func TestScoreBaseline(t *testing.T) {
	s := NewProfileScorer(testICPConfig())

	got := s.Score(&source.Candidate{Name: "Nothing Known"})
	// Base 50 plus the smallest size band for unknown employee count.
	if got != 55 {
		t.Errorf("baseline score = %v, want 55", got)
	}
}

func TestScoreComponents(t *testing.T) {
	s := NewProfileScorer(testICPConfig())

	testCases := []struct {
		name      string
		candidate source.Candidate
		want      float64
	}{
		{
			name:      "industry weight",
			candidate: source.Candidate{Industry: "tourism"},
			want:      50 + 25 + 5,
		},
		{
			name:      "industry substring match",
			candidate: source.Candidate{Industry: "Tourism and Activities"},
			want:      50 + 25 + 5,
		},
		{
			name:      "location from address",
			candidate: source.Candidate{Address: "123 Kalakaua Ave, Honolulu, HI"},
			want:      50 + 15 + 5,
		},
		{
			name:      "size band",
			candidate: source.Candidate{EmployeeCount: 75},
			want:      50 + 25,
		},
		{
			name:      "website and contact bonuses",
			candidate: source.Candidate{Website: "https://example.com", Phone: "808-555-1234"},
			want:      50 + 5 + 5 + 5,
		},
		{
			name: "pain points capped at 15",
			candidate: source.Candidate{
				Description: "manual processes, automation, efficiency, scaling challenges, customer insights, operational costs",
			},
			want: 50 + 15 + 5,
		},
		{
			name: "tech indicators capped at 10",
			candidate: source.Candidate{
				Description: "online booking, crm, cloud, api, ecommerce, mobile app",
			},
			want: 50 + 10 + 5,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Score(&tc.candidate); got != tc.want {
				t.Errorf("Score = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestScoreClampedAt100(t *testing.T) {
	s := NewProfileScorer(testICPConfig())

	candidate := source.Candidate{
		Industry:      "tourism",
		Location:      "Honolulu",
		EmployeeCount: 75,
		Description:   "manual processes automation efficiency scaling challenges customer insights online booking crm cloud api ecommerce",
		Website:       "https://example.com",
		Email:         "info@example.com",
	}
	if got := s.Score(&candidate); got != 100 {
		t.Errorf("Score = %v, want clamp at 100", got)
	}
}

func TestScoreDeterministicWithOverlappingWeights(t *testing.T) {
	cfg := testICPConfig()
	// Keys that can match the same candidate with different weights.
	cfg.IndustryWeights = map[string]float64{"tourism": 25, "tour": 20}
	cfg.LocationWeights = map[string]float64{"honolulu": 15, "hawaii": 10, "oahu": 15}
	s := NewProfileScorer(cfg)

	candidate := source.Candidate{
		Industry: "tourism",
		Address:  "500 Ala Moana Blvd, Honolulu, Hawaii",
	}

	// Highest matching weight wins: 50 base + 25 industry + 15 location + 5 size.
	want := 95.0
	for i := 0; i < 2000; i++ {
		if got := s.Score(&candidate); got != want {
			t.Fatalf("iteration %d: Score = %v, want %v", i, got, want)
		}
	}
}

func TestMatchWeight(t *testing.T) {
	weights := map[string]float64{"honolulu": 15, "hawaii": 10}

	testCases := []struct {
		name string
		text string
		want float64
	}{
		{"single match", "waipahu hawaii", 10},
		{"overlap takes highest", "honolulu hawaii", 15},
		{"no match", "las vegas nevada", 0},
		{"empty text", "", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchWeight(tc.text, weights); got != tc.want {
				t.Errorf("matchWeight(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestScoreMissingFieldsEarnNothing(t *testing.T) {
	s := NewProfileScorer(testICPConfig())

	// Unknown industry and location must not error, just earn no points.
	candidate := source.Candidate{Industry: "aerospace", Location: "Las Vegas"}
	if got := s.Score(&candidate); got != 55 {
		t.Errorf("Score = %v, want 55", got)
	}
}

func TestSizeBand(t *testing.T) {
	testCases := []struct {
		employees int
		want      string
	}{
		{0, "1-10"},
		{5, "1-10"},
		{10, "10-50"},
		{50, "10-50"},
		{51, "51-100"},
		{100, "51-100"},
		{101, "101-250"},
		{500, "251-500"},
		{999, "501-1000"},
		{1000, "1000+"},
	}

	for _, tc := range testCases {
		if got := sizeBand(tc.employees); got != tc.want {
			t.Errorf("sizeBand(%d) = %q, want %q", tc.employees, got, tc.want)
		}
	}
}

func TestThreshold(t *testing.T) {
	s := NewProfileScorer(testICPConfig())
	if s.Threshold() != 70.0 {
		t.Errorf("Threshold = %v, want 70", s.Threshold())
	}
}
