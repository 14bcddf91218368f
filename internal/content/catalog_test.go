package content

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

var renderTime = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func testCategory(id string, weight float64) models.Category {
	return models.Category{
		ID:        id,
		Weight:    weight,
		Topics:    []string{"alpha", "beta", "gamma"},
		Templates: []string{"Thinking about {topic} today."},
		Hashtags:  []string{"One", "Two", "Three"},
	}
}

func TestNewCatalog_RejectsInvalidPools(t *testing.T) {
	_, err := NewCatalog(nil, 1, 3, 280, nil)
	assert.Error(t, err)

	bad := testCategory("x", 0.5)
	bad.Templates = nil
	_, err = NewCatalog([]models.Category{bad}, 1, 3, 280, nil)
	assert.Error(t, err)

	zero := testCategory("y", 0)
	_, err = NewCatalog([]models.Category{zero}, 1, 3, 280, nil)
	assert.Error(t, err)
}

func TestSelectCategory_WeightDistribution(t *testing.T) {
	cats := []models.Category{
		testCategory("heavy", 0.75),
		testCategory("light", 0.25),
	}
	c, err := NewCatalog(cats, 99, 3, 280, nil)
	require.NoError(t, err)

	const trials = 100000
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		counts[c.SelectCategory().ID]++
	}

	heavyShare := float64(counts["heavy"]) / trials
	assert.Less(t, math.Abs(heavyShare-0.75), 0.01, "heavy share was %v", heavyShare)
}

func TestRender_NeverExceedsLimit(t *testing.T) {
	cat := models.Category{
		ID:        "crypto",
		Weight:    1,
		Topics:    []string{strings.Repeat("long topic ", 8)},
		Templates: []string{"A thought on {topic} and then some trailing words."},
		Hashtags:  []string{"Crypto", "Bitcoin", "Web3", "DeFi"},
	}
	c, err := NewCatalog([]models.Category{cat}, 5, 4, 280, nil)
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		cand, err := c.Render(cat, nil, renderTime)
		require.NoError(t, err)
		assert.LessOrEqual(t, len([]rune(cand.Text)), 280)
	}
}

func TestRender_DropsWholeHashtagsUntilFit(t *testing.T) {
	cat := models.Category{
		ID:        "tight",
		Weight:    1,
		Topics:    []string{"x"},
		Templates: []string{strings.Repeat("a", 60) + " {topic}"},
		Hashtags:  []string{"VeryLongHashtagNumberOne", "VeryLongHashtagNumberTwo"},
	}
	// Limit leaves room for the text but not for any hashtag.
	c, err := NewCatalog([]models.Category{cat}, 5, 2, 64, nil)
	require.NoError(t, err)

	cand, err := c.Render(cat, nil, renderTime)
	require.NoError(t, err)
	assert.NotContains(t, cand.Text, "#", "hashtags should have been dropped whole")
	assert.LessOrEqual(t, len([]rune(cand.Text)), 64)
}

func TestRender_TooLongEvenWithoutHashtags(t *testing.T) {
	cat := models.Category{
		ID:        "huge",
		Weight:    1,
		Topics:    []string{"t"},
		Templates: []string{strings.Repeat("word ", 100) + "{topic}"},
		Hashtags:  []string{"Tag"},
	}
	c, err := NewCatalog([]models.Category{cat}, 5, 1, 280, nil)
	require.NoError(t, err)

	_, err = c.Render(cat, nil, renderTime)
	assert.ErrorIs(t, err, ErrContentTooLong)
}

func TestRender_AvoidsRecentTopics(t *testing.T) {
	cat := testCategory("c", 1)
	c, err := NewCatalog([]models.Category{cat}, 5, 0, 280, nil)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		cand, err := c.Render(cat, []string{"alpha", "beta"}, renderTime)
		require.NoError(t, err)
		assert.Equal(t, "gamma", cand.Topic)
	}
}

func TestRender_ReusesLeastRecentlyUsedWhenExhausted(t *testing.T) {
	cat := testCategory("c", 1)
	c, err := NewCatalog([]models.Category{cat}, 5, 0, 280, nil)
	require.NoError(t, err)

	// Most recent first: gamma was just used, alpha is the stalest.
	cand, err := c.Render(cat, []string{"gamma", "beta", "alpha"}, renderTime)
	require.NoError(t, err)
	assert.Equal(t, "alpha", cand.Topic)
}

func TestRender_SubstitutesTopicAndAppendsHashtags(t *testing.T) {
	cat := models.Category{
		ID:        "one",
		Weight:    1,
		Topics:    []string{"compound interest"},
		Templates: []string{"Learn {topic}."},
		Hashtags:  []string{"Money"},
	}
	c, err := NewCatalog([]models.Category{cat}, 5, 1, 280, nil)
	require.NoError(t, err)

	cand, err := c.Render(cat, nil, renderTime)
	require.NoError(t, err)
	assert.Equal(t, "Learn compound interest. #Money", cand.Text)
	assert.Equal(t, "one", cand.Category)
	assert.Equal(t, renderTime, cand.GeneratedAt)
}
