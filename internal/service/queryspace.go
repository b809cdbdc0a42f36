package service

import (
	"strings"

	"github.com/lenilani/leadscout/internal/config"
	"github.com/lenilani/leadscout/internal/domain"
)

// GenerateQuerySpace enumerates the full (industry, location, keyword)
// search space from configuration. The enumeration is a pure function of the
// config: industries in configured order, then locations, then the
// industry's keywords, so two calls with the same config always yield the
// same sequence. Rotation bookkeeping depends on this ordering.
// Parameters:
//   - cfg: query space dimensions.
// Returns:
//   - []domain.QueryCombination: the ordered combination sequence.
//   - error: *ConfigurationError if a required dimension is empty or a value
//     contains the hash separator.
func GenerateQuerySpace(cfg *config.QuerySpaceConfig) ([]domain.QueryCombination, error) {
	if len(cfg.Industries) == 0 {
		return nil, NewConfigurationError("query_space.industries", "must not be empty")
	}
	if len(cfg.Locations) == 0 {
		return nil, NewConfigurationError("query_space.locations", "must not be empty")
	}

	for _, ind := range cfg.Industries {
		if err := validateDimensionValue("query_space.industries", ind); err != nil {
			return nil, err
		}
		if len(cfg.Keywords[ind]) == 0 {
			return nil, NewConfigurationError("query_space.keywords."+ind, "must not be empty")
		}
	}
	for _, loc := range cfg.Locations {
		if err := validateDimensionValue("query_space.locations", loc); err != nil {
			return nil, err
		}
	}

	var combos []domain.QueryCombination
	for _, ind := range cfg.Industries {
		for _, loc := range cfg.Locations {
			for _, kw := range cfg.Keywords[ind] {
				if err := validateDimensionValue("query_space.keywords."+ind, kw); err != nil {
					return nil, err
				}
				combos = append(combos, domain.QueryCombination{
					Industry: ind,
					Location: loc,
					Keyword:  kw,
				})
			}
		}
	}
	return combos, nil
}

func validateDimensionValue(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewConfigurationError(field, "contains an empty value")
	}
	if strings.Contains(value, "|") {
		return NewConfigurationError(field, "value must not contain '|'")
	}
	return nil
}
