package progression

import (
	"encoding/json"
	"fmt"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
)

type StarLevel string

const (
	StarNone  StarLevel = "NONE"
	StarOne   StarLevel = "ONE"
	StarTwo   StarLevel = "TWO"
	StarThree StarLevel = "THREE"
	StarFour  StarLevel = "FOUR"
	StarFive  StarLevel = "FIVE"
)

func ValidStarLevel(s StarLevel) bool {
	switch s {
	case StarNone, StarOne, StarTwo, StarThree, StarFour, StarFive:
		return true
	}
	return false
}

type Tier string

const (
	TierBronze Tier = "BRONZE"
	TierSilver Tier = "SILVER"
	TierGold   Tier = "GOLD"
)

func ValidTier(t Tier) bool {
	return t == TierBronze || t == TierSilver || t == TierGold
}

// ScoreRange is an inclusive [Min, Max] band on the 0-100 scale.
type ScoreRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// TierThresholds is the per-product threshold table.
type TierThresholds struct {
	Bronze ScoreRange `json:"bronze"`
	Silver ScoreRange `json:"silver"`
	Gold   ScoreRange `json:"gold"`
}

// DefaultTierThresholds is the documented fallback table, applied when
// a product carries no configuration. A student must never be left
// without a tier after a passing assessment because of missing config.
func DefaultTierThresholds() TierThresholds {
	return TierThresholds{
		Bronze: ScoreRange{Min: 0, Max: 60},
		Silver: ScoreRange{Min: 61, Max: 80},
		Gold:   ScoreRange{Min: 81, Max: 100},
	}
}

// ParseTierThresholds decodes a stored jsonb table, falling back to the
// default when raw is empty. An unparseable or invalid table is a
// validation error so it is caught at authoring time.
func ParseTierThresholds(raw []byte) (TierThresholds, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultTierThresholds(), nil
	}
	var t TierThresholds
	if err := json.Unmarshal(raw, &t); err != nil {
		return TierThresholds{}, apperr.Wrap(apperr.KindValidation, "tier thresholds cannot be parsed", err)
	}
	if err := t.Validate(); err != nil {
		return TierThresholds{}, err
	}
	return t, nil
}

// Validate checks each band is within 0-100 with min <= max and that
// the bands are ordered bronze < silver < gold by upper bound.
func (t TierThresholds) Validate() error {
	var violations []string
	check := func(name string, r ScoreRange) {
		if r.Min < 0 || r.Max > 100 {
			violations = append(violations, fmt.Sprintf("%s range [%g,%g] outside 0-100", name, r.Min, r.Max))
		}
		if r.Min > r.Max {
			violations = append(violations, fmt.Sprintf("%s range has min %g above max %g", name, r.Min, r.Max))
		}
	}
	check("bronze", t.Bronze)
	check("silver", t.Silver)
	check("gold", t.Gold)
	if !(t.Bronze.Max < t.Silver.Max && t.Silver.Max < t.Gold.Max) {
		violations = append(violations, "ranges must be ordered bronze < silver < gold")
	}
	if len(violations) > 0 {
		return apperr.Validation("invalid tier thresholds", violations...)
	}
	return nil
}

// ResolveTier maps an average score onto the table by upper bound, so
// any 0-100 score resolves to exactly one tier even when configured
// ranges leave gaps.
func ResolveTier(avgScore float64, t TierThresholds) Tier {
	switch {
	case avgScore <= t.Bronze.Max:
		return TierBronze
	case avgScore <= t.Silver.Max:
		return TierSilver
	default:
		return TierGold
	}
}

// State is the current star/tier position of a student in a product.
type State struct {
	StarLevel StarLevel
	Tier      *Tier
}

// AdvanceOnAssessment applies the automatic NONE -> ONE transition: the
// first passing, fully-graded tier-determining assessment promotes the
// student and assigns a tier from avgScore (the average over all
// completed tier-determining assessments, so retroactive completions
// are accounted for). Higher star levels are advanced elsewhere; a
// student already past NONE is left untouched.
func AdvanceOnAssessment(cur State, passed bool, avgScore float64, thresholds TierThresholds) (State, bool) {
	if !passed {
		return cur, false
	}
	if cur.StarLevel != StarNone && cur.StarLevel != "" {
		return cur, false
	}
	tier := ResolveTier(avgScore, thresholds)
	return State{StarLevel: StarOne, Tier: &tier}, true
}

// ApplyOverride is the documented escape hatch: any state to any state,
// bypassing the automatic transition's invariants, but never without a
// recorded justification.
func ApplyOverride(star StarLevel, tier Tier, reason string) (State, error) {
	var violations []string
	if reason == "" {
		violations = append(violations, "override reason is required")
	}
	if !ValidStarLevel(star) {
		violations = append(violations, fmt.Sprintf("invalid star level %q", star))
	}
	if !ValidTier(tier) {
		violations = append(violations, fmt.Sprintf("invalid tier %q", tier))
	}
	if len(violations) > 0 {
		return State{}, apperr.Validation("invalid progression override", violations...)
	}
	return State{StarLevel: star, Tier: &tier}, nil
}
