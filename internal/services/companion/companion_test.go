package companion_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plantcare-api/internal/services/companion"
)

func TestLookupKnownSpecies(t *testing.T) {
	advice, ok := companion.Lookup("tomato")
	require.True(t, ok)
	assert.Equal(t, "tomato", advice.Species)
	assert.NotEmpty(t, advice.Good)
	assert.NotEmpty(t, advice.Bad)

	var goodSpecies []string
	for _, c := range advice.Good {
		goodSpecies = append(goodSpecies, c.Species)
		assert.NotEmpty(t, c.Reason)
	}
	assert.Contains(t, goodSpecies, "basil")
}

func TestLookupNormalizesInput(t *testing.T) {
	upper, ok := companion.Lookup("  TOMATO ")
	require.True(t, ok)
	lower, _ := companion.Lookup("tomato")
	assert.Equal(t, lower, upper)
}

func TestLookupUnknownSpecies(t *testing.T) {
	advice, ok := companion.Lookup("triffid")
	assert.False(t, ok)
	assert.Nil(t, advice)
}

func TestSpeciesSortedAndComplete(t *testing.T) {
	species := companion.Species()
	require.NotEmpty(t, species)
	assert.True(t, sort.StringsAreSorted(species))

	for _, s := range species {
		_, ok := companion.Lookup(s)
		assert.True(t, ok, s)
	}
}
