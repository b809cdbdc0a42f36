package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// QueryCombination is one point in the (industry, location, keyword) search
// space. Immutable; enumeration order is fixed by the query space generator
// so rotation bookkeeping stays reproducible across runs.
type QueryCombination struct {
	Industry string `json:"industry"`
	Location string `json:"location"`
	Keyword  string `json:"keyword"`
}

// Hash returns the stable identity of the combination used by the rotation
// ledger. Dimension values are joined with a separator that cannot appear in
// configuration input after validation.
func (q QueryCombination) Hash() string {
	sum := sha256.Sum256([]byte(q.Industry + "|" + q.Location + "|" + q.Keyword))
	return hex.EncodeToString(sum[:])
}

// SearchText renders the combination as the free-text query handed to source
// adapters, e.g. "Honolulu boutique hotel".
func (q QueryCombination) SearchText() string {
	return fmt.Sprintf("%s %s", q.Location, q.Keyword)
}

// String implements fmt.Stringer for log output.
func (q QueryCombination) String() string {
	return q.Industry + "/" + q.Location + "/" + q.Keyword
}
