package service

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lenilani/leadscout/internal/domain"
)

// legalSuffixes are company-name tokens dropped during normalization so that
// "Aloha Tours LLC" and "Aloha Tours, Inc." collapse to the same key.
var legalSuffixes = map[string]bool{
	"inc": true, "llc": true, "ltd": true, "corp": true,
	"corporation": true, "company": true, "co": true, "incorporated": true,
	"limited": true,
}

// minPhoneKeyDigits is the shortest phone fragment worth indexing. Shorter
// fragments are too likely to be switchboard or junk digits and would merge
// unrelated companies under the any-key-matches rule.
const minPhoneKeyDigits = 7

// Deduplicator decides whether a candidate is the same lead as one already
// admitted, across runs and within the current run. Two candidates are the
// same lead when ANY of their normalized name, domain, or phone keys match.
// This deliberately favors dropping a borderline candidate over admitting a
// near-duplicate; validate the phone rule against real data before trusting
// it on noisy sources.
type Deduplicator struct {
	names   map[string]bool
	domains map[string]bool
	phones  map[string]bool
}

// NewDeduplicator creates a deduplicator seeded with the canonical keys of
// every previously admitted lead.
// Parameters:
//   - seed: canonical keys loaded from the lead store.
// Returns:
//   - *Deduplicator: index ready for lookups.
func NewDeduplicator(seed []domain.CanonicalKeys) *Deduplicator {
	d := &Deduplicator{
		names:   make(map[string]bool),
		domains: make(map[string]bool),
		phones:  make(map[string]bool),
	}
	for _, keys := range seed {
		d.Register(keys)
	}
	return d
}

// Keys derives the canonical identity keys from raw candidate fields. The
// same normalization runs at registration and lookup time, so
// Register(x) followed by IsDuplicate(x) always holds.
// Parameters:
//   - name: raw company name.
//   - website: raw website URL.
//   - phone: raw phone number.
// Returns:
//   - domain.CanonicalKeys: normalized keys; parts that normalize to nothing
//     are empty and never indexed.
func (d *Deduplicator) Keys(name, website, phone string) domain.CanonicalKeys {
	return domain.CanonicalKeys{
		Name:   NormalizeCompanyName(name),
		Domain: NormalizeDomain(website),
		Phone:  NormalizePhone(phone),
	}
}

// IsDuplicate reports whether any key of the candidate is already known.
// Parameters:
//   - keys: canonical keys of the candidate.
// Returns:
//   - bool: true when the candidate matches an admitted lead.
func (d *Deduplicator) IsDuplicate(keys domain.CanonicalKeys) bool {
	if keys.Name != "" && d.names[keys.Name] {
		return true
	}
	if keys.Domain != "" && d.domains[keys.Domain] {
		return true
	}
	if keys.Phone != "" && d.phones[keys.Phone] {
		return true
	}
	return false
}

// Register adds the candidate's keys to the index. Keys are only ever
// added, never removed; the admitted-key set grows monotonically for the
// lifetime of the system.
// Parameters:
//   - keys: canonical keys of the admitted candidate.
func (d *Deduplicator) Register(keys domain.CanonicalKeys) {
	if keys.Name != "" {
		d.names[keys.Name] = true
	}
	if keys.Domain != "" {
		d.domains[keys.Domain] = true
	}
	if keys.Phone != "" {
		d.phones[keys.Phone] = true
	}
}

// NormalizeCompanyName lowercases, strips punctuation and legal suffixes,
// and joins the remaining tokens in sorted order so word order does not
// matter.
func NormalizeCompanyName(name string) string {
	lowered := strings.ToLower(name)
	var b strings.Builder
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	var tokens []string
	for _, tok := range strings.Fields(b.String()) {
		if legalSuffixes[tok] {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return ""
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// NormalizeDomain strips the scheme, a leading "www.", and any trailing
// slash from a website URL, lowercasing the rest.
func NormalizeDomain(website string) string {
	w := strings.ToLower(strings.TrimSpace(website))
	w = strings.TrimPrefix(w, "https://")
	w = strings.TrimPrefix(w, "http://")
	w = strings.TrimPrefix(w, "www.")
	w = strings.TrimRight(w, "/")
	return w
}

// NormalizePhone keeps digits only and, for numbers of US length or longer,
// the last ten digits so that country-code and formatting differences
// collapse. Fragments shorter than minPhoneKeyDigits normalize to "" and
// are not used for matching.
func NormalizePhone(phone string) string {
	var digits []byte
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits = append(digits, byte(r))
		}
	}
	if len(digits) < minPhoneKeyDigits {
		return ""
	}
	if len(digits) >= 10 {
		digits = digits[len(digits)-10:]
	}
	return string(digits)
}
