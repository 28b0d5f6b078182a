package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m-deepankar-singh/cultus-platform-sub006/internal/apperr"
)

func TestResolveTier_DefaultTable(t *testing.T) {
	defaults := DefaultTierThresholds()

	cases := []struct {
		score float64
		want  Tier
	}{
		{0, TierBronze},
		{45, TierBronze},
		{60, TierBronze},
		{60.5, TierSilver},
		{61, TierSilver},
		{80, TierSilver},
		{81, TierGold},
		{85, TierGold},
		{100, TierGold},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ResolveTier(tc.score, defaults), "score %g", tc.score)
	}
}

func TestResolveTier_GapsStillResolve(t *testing.T) {
	// Configured bands with a hole between 50 and 70. Resolution goes by
	// upper bound, so 60 still lands in silver.
	table := TierThresholds{
		Bronze: ScoreRange{Min: 0, Max: 50},
		Silver: ScoreRange{Min: 70, Max: 85},
		Gold:   ScoreRange{Min: 86, Max: 100},
	}
	assert.Equal(t, TierSilver, ResolveTier(60, table))
}

func TestParseTierThresholds_EmptyFallsBack(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(``), []byte(`null`)} {
		table, err := ParseTierThresholds(raw)
		require.NoError(t, err)
		assert.Equal(t, DefaultTierThresholds(), table)
	}
}

func TestParseTierThresholds_Valid(t *testing.T) {
	raw := []byte(`{"bronze":{"min":0,"max":40},"silver":{"min":41,"max":70},"gold":{"min":71,"max":100}}`)
	table, err := ParseTierThresholds(raw)
	require.NoError(t, err)
	assert.Equal(t, float64(40), table.Bronze.Max)
	assert.Equal(t, TierGold, ResolveTier(75, table))
}

func TestParseTierThresholds_Invalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"broken json", `{"bronze":`},
		{"out of range", `{"bronze":{"min":-5,"max":60},"silver":{"min":61,"max":80},"gold":{"min":81,"max":100}}`},
		{"min above max", `{"bronze":{"min":50,"max":40},"silver":{"min":41,"max":80},"gold":{"min":81,"max":100}}`},
		{"unordered bands", `{"bronze":{"min":0,"max":90},"silver":{"min":61,"max":80},"gold":{"min":81,"max":100}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTierThresholds([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestAdvanceOnAssessment_FirstPassPromotes(t *testing.T) {
	state, changed := AdvanceOnAssessment(State{StarLevel: StarNone}, true, 85, DefaultTierThresholds())
	assert.True(t, changed)
	assert.Equal(t, StarOne, state.StarLevel)
	require.NotNil(t, state.Tier)
	assert.Equal(t, TierGold, *state.Tier)
}

func TestAdvanceOnAssessment_FailedDoesNotPromote(t *testing.T) {
	cur := State{StarLevel: StarNone}
	state, changed := AdvanceOnAssessment(cur, false, 85, DefaultTierThresholds())
	assert.False(t, changed)
	assert.Equal(t, cur, state)
	assert.Nil(t, state.Tier)
}

func TestAdvanceOnAssessment_OnlyFromNone(t *testing.T) {
	gold := TierGold
	for _, star := range []StarLevel{StarOne, StarTwo, StarFive} {
		cur := State{StarLevel: star, Tier: &gold}
		state, changed := AdvanceOnAssessment(cur, true, 100, DefaultTierThresholds())
		assert.False(t, changed, "star %s", star)
		assert.Equal(t, cur, state)
	}
}

func TestAdvanceOnAssessment_EmptyStarTreatedAsNone(t *testing.T) {
	// Freshly initialized rows may carry an empty star level before the
	// column default applies.
	state, changed := AdvanceOnAssessment(State{}, true, 50, DefaultTierThresholds())
	assert.True(t, changed)
	assert.Equal(t, StarOne, state.StarLevel)
	require.NotNil(t, state.Tier)
	assert.Equal(t, TierBronze, *state.Tier)
}

func TestAdvanceOnAssessment_Idempotent(t *testing.T) {
	state, changed := AdvanceOnAssessment(State{StarLevel: StarNone}, true, 70, DefaultTierThresholds())
	require.True(t, changed)

	again, changed := AdvanceOnAssessment(state, true, 95, DefaultTierThresholds())
	assert.False(t, changed)
	assert.Equal(t, state, again)
}

func TestApplyOverride_RequiresReason(t *testing.T) {
	_, err := ApplyOverride(StarThree, TierGold, "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Contains(t, apperr.DetailsOf(err), "override reason is required")
}

func TestApplyOverride_ValidatesEnums(t *testing.T) {
	_, err := ApplyOverride("SEVEN", "PLATINUM", "manual correction")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Len(t, apperr.DetailsOf(err), 2)
}

func TestApplyOverride_AnyStateToAnyState(t *testing.T) {
	state, err := ApplyOverride(StarFive, TierBronze, "appeal upheld")
	require.NoError(t, err)
	assert.Equal(t, StarFive, state.StarLevel)
	require.NotNil(t, state.Tier)
	assert.Equal(t, TierBronze, *state.Tier)
}
