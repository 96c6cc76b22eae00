package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/model"
)

func TestDefaultTierCatalog(t *testing.T) {
	c := DefaultTierCatalog()

	assert.Equal(t, []model.Tier{
		model.TierMember, model.TierSilver, model.TierBronze,
		model.TierDiamond, model.TierGold, model.TierVIP,
	}, c.Tiers())
	assert.Equal(t, model.TierVIP, c.Top())

	limits, err := c.LimitsFor(model.TierSilver)
	require.NoError(t, err)
	assert.Equal(t, 5, limits.DailyTasks)
	assert.Equal(t, []model.Category{model.CategoryMain, model.CategorySocial}, limits.Categories)

	price, err := c.PriceFor(model.TierGold)
	require.NoError(t, err)
	assert.Equal(t, "75", price.String())
}

func TestTierCatalog_Rank(t *testing.T) {
	c := DefaultTierCatalog()

	memberRank, err := c.Rank(model.TierMember)
	require.NoError(t, err)
	vipRank, err := c.Rank(model.TierVIP)
	require.NoError(t, err)
	assert.Less(t, memberRank, vipRank)
}

func TestTierCatalog_UnknownTierIsAnError(t *testing.T) {
	c := DefaultTierCatalog()

	_, err := c.Rank(model.Tier("platinum"))
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = c.LimitsFor(model.Tier(""))
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = c.PriceFor(model.Tier("free"))
	assert.ErrorIs(t, err, ErrUnknownTier)
}

func TestTierCatalog_CanAccess(t *testing.T) {
	c := DefaultTierCatalog()

	tests := []struct {
		userTier model.Tier
		taskTier model.Tier
		want     bool
	}{
		{model.TierVIP, model.TierMember, true},
		{model.TierMember, model.TierMember, true},
		{model.TierMember, model.TierVIP, false},
		{model.TierBronze, model.TierSilver, true},
		{model.TierSilver, model.TierBronze, false},
	}

	for _, tt := range tests {
		got, err := c.CanAccess(tt.userTier, tt.taskTier)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.userTier, tt.taskTier)
	}
}

func TestTierCatalog_CategoriesAreMonotonic(t *testing.T) {
	c := DefaultTierCatalog()

	var prev []model.Category
	for _, tier := range c.Tiers() {
		limits, err := c.LimitsFor(tier)
		require.NoError(t, err)
		for _, cat := range prev {
			ok, err := c.AllowsCategory(tier, cat)
			require.NoError(t, err)
			assert.True(t, ok, "tier %s must keep category %s", tier, cat)
		}
		prev = limits.Categories
	}
}

func TestNewTierCatalog_RejectsDroppedCategory(t *testing.T) {
	_, err := NewTierCatalog([]config.TierConfig{
		{Name: "member", Price: "5.00", DailyTasks: 2, Categories: []string{"main", "social"}},
		{Name: "silver", Price: "10.00", DailyTasks: 5, Categories: []string{"main"}},
	})
	assert.Error(t, err)
}

func TestNewTierCatalog_RejectsUnknownCategory(t *testing.T) {
	_, err := NewTierCatalog([]config.TierConfig{
		{Name: "member", Price: "5.00", DailyTasks: 2, Categories: []string{"gaming"}},
	})
	assert.Error(t, err)
}

func TestNewTierCatalog_RejectsBadPrice(t *testing.T) {
	_, err := NewTierCatalog([]config.TierConfig{
		{Name: "member", Price: "five", DailyTasks: 2, Categories: []string{"main"}},
	})
	assert.Error(t, err)
}

func TestNewTierCatalog_EmptyConfigFallsBackToDefault(t *testing.T) {
	c, err := NewTierCatalog(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTierCatalog().Tiers(), c.Tiers())
}
