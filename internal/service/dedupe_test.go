package service

import (
	"testing"

	"github.com/lenilani/leadscout/internal/domain"
)

func TestNormalizeCompanyName(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"legal suffix dropped", "Aloha Tours LLC", "aloha tours"},
		{"punctuation and inc", "Aloha Tours, Inc.", "aloha tours"},
		{"word order ignored", "Tours Aloha", "aloha tours"},
		{"mixed case", "ALOHA tours", "aloha tours"},
		{"only suffix", "LLC", ""},
		{"empty", "", ""},
		{"digits kept", "808 Surf Co", "808 surf"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeCompanyName(tc.input); got != tc.want {
				t.Errorf("NormalizeCompanyName(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{"https://www.alohatours.com/", "alohatours.com"},
		{"http://alohatours.com", "alohatours.com"},
		{"WWW.AlohaTours.COM", "alohatours.com"},
		{"alohatours.com/book/now/", "alohatours.com/book/now"},
		{"", ""},
	}

	for _, tc := range testCases {
		if got := NormalizeDomain(tc.input); got != tc.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"us formatted", "(808) 555-1234", "8085551234"},
		{"country code stripped", "+1 808 555 1234", "8085551234"},
		{"seven digits kept", "555-1234", "5551234"},
		{"too short", "12345", ""},
		{"empty", "", ""},
		{"letters ignored", "call 808-555-1234 now", "8085551234"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePhone(tc.input); got != tc.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestDeduplicatorAnyKeyMatches(t *testing.T) {
	d := NewDeduplicator(nil)
	first := d.Keys("Aloha Tours LLC", "https://www.alohatours.com", "(808) 555-1234")
	d.Register(first)

	testCases := []struct {
		name    string
		company string
		website string
		phone   string
		want    bool
	}{
		{"same name different rest", "Aloha Tours, Inc.", "", "", true},
		{"same domain different rest", "Totally Different", "http://alohatours.com/", "", true},
		{"same phone different rest", "Totally Different", "", "+1-808-555-1234", true},
		{"all different", "Maui Snorkel Shop", "mauisnorkel.com", "808-555-9999", false},
		{"no usable keys", "LLC", "", "123", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			keys := d.Keys(tc.company, tc.website, tc.phone)
			if got := d.IsDuplicate(keys); got != tc.want {
				t.Errorf("IsDuplicate = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDeduplicatorSeedsFromStore(t *testing.T) {
	seed := []domain.CanonicalKeys{
		{Name: "aloha tours", Domain: "alohatours.com", Phone: "8085551234"},
	}
	d := NewDeduplicator(seed)

	keys := d.Keys("Aloha Tours", "", "")
	if !d.IsDuplicate(keys) {
		t.Error("expected seeded lead to be detected as duplicate")
	}
}

func TestDeduplicatorEmptyKeysNeverMatch(t *testing.T) {
	d := NewDeduplicator(nil)
	d.Register(domain.CanonicalKeys{})
	d.Register(d.Keys("LLC", "", "12"))

	if d.IsDuplicate(d.Keys("Inc", "", "99")) {
		t.Error("two candidates with no usable keys must not match each other")
	}
}

func TestDeduplicatorRegisterThenLookup(t *testing.T) {
	d := NewDeduplicator(nil)
	keys := d.Keys("Kona Coffee Roasters", "konacoffee.com", "808-555-0000")

	if d.IsDuplicate(keys) {
		t.Fatal("fresh candidate should not be a duplicate")
	}
	d.Register(keys)
	if !d.IsDuplicate(keys) {
		t.Error("registered candidate must be found on the next lookup")
	}
}
