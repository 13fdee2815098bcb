package domain_test

import (
	"testing"

	"github.com/openkraft/encmend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]domain.Strategy{
		"declaration":       domain.StrategyDeclaration,
		"declaration-fix":   domain.StrategyDeclaration,
		"dictionary":        domain.StrategyDictionary,
		"dictionary-repair": domain.StrategyDictionary,
		"contextual":        domain.StrategyContextual,
		"contextual-repair": domain.StrategyContextual,
	} {
		got, err := domain.ParseStrategy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseStrategy("final")
	assert.ErrorIs(t, err, domain.ErrUnknownStrategy)
}

func TestFixResult_SetCounts(t *testing.T) {
	var r domain.FixResult
	r.SetCounts(5, 1)
	assert.Equal(t, 5, r.OriginalReplacementCount)
	assert.Equal(t, 1, r.FinalReplacementCount)
	assert.Equal(t, 4, r.FixedCount)

	r.SetCounts(1, 3)
	assert.Equal(t, 0, r.FixedCount)
}

func TestFixReport_NeedsReview(t *testing.T) {
	r := &domain.FixReport{Results: []domain.FixResult{
		{Success: true},
		{Success: true, NeedsManualReview: true},
		{Success: false},
	}}
	assert.Equal(t, 2, r.NeedsReview())
}
