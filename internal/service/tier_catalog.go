package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/taskhive/taskhive-server/config"
	"github.com/taskhive/taskhive-server/internal/model"
)

// ErrUnknownTier is returned for tiers absent from the catalog. Malformed
// tier data is surfaced, never silently downgraded.
var ErrUnknownTier = fmt.Errorf("unknown subscription tier")

// TierLimits is what a tier entitles a user to per day.
type TierLimits struct {
	DailyTasks int
	Categories []model.Category
}

// TierCatalog is the immutable, ordered table of subscription tiers. Rank
// grows with privilege: a higher-ranked tier's category set is a superset of
// every lower-ranked tier's.
type TierCatalog struct {
	order  []model.Tier
	limits map[model.Tier]TierLimits
	prices map[model.Tier]decimal.Decimal
}

// NewTierCatalog builds a catalog from configuration, validating ordering
// invariants. An empty config yields the built-in default catalog.
func NewTierCatalog(cfgs []config.TierConfig) (*TierCatalog, error) {
	if len(cfgs) == 0 {
		return DefaultTierCatalog(), nil
	}

	c := &TierCatalog{
		limits: make(map[model.Tier]TierLimits, len(cfgs)),
		prices: make(map[model.Tier]decimal.Decimal, len(cfgs)),
	}

	var prev map[model.Category]bool
	for i, tc := range cfgs {
		tier := model.Tier(tc.Name)
		if _, dup := c.limits[tier]; dup {
			return nil, fmt.Errorf("tier catalog: duplicate tier %q", tc.Name)
		}
		if tc.DailyTasks <= 0 {
			return nil, fmt.Errorf("tier catalog: tier %q has non-positive daily task quota", tc.Name)
		}

		price, err := decimal.NewFromString(tc.Price)
		if err != nil {
			return nil, fmt.Errorf("tier catalog: tier %q has invalid price %q: %w", tc.Name, tc.Price, err)
		}

		cats := make([]model.Category, 0, len(tc.Categories))
		set := make(map[model.Category]bool, len(tc.Categories))
		for _, raw := range tc.Categories {
			cat := model.Category(raw)
			if !validCategory(cat) {
				return nil, fmt.Errorf("tier catalog: tier %q references unknown category %q", tc.Name, raw)
			}
			cats = append(cats, cat)
			set[cat] = true
		}

		// Each tier must carry everything the previous one does.
		for cat := range prev {
			if !set[cat] {
				return nil, fmt.Errorf("tier catalog: tier %q (rank %d) drops category %q from the previous tier", tc.Name, i, cat)
			}
		}
		prev = set

		c.order = append(c.order, tier)
		c.limits[tier] = TierLimits{DailyTasks: tc.DailyTasks, Categories: cats}
		c.prices[tier] = price
	}

	return c, nil
}

// DefaultTierCatalog returns the compiled-in six-tier table.
func DefaultTierCatalog() *TierCatalog {
	cfgs := []config.TierConfig{
		{Name: "member", Price: "5.00", DailyTasks: 2, Categories: []string{"main"}},
		{Name: "silver", Price: "10.00", DailyTasks: 5, Categories: []string{"main", "social"}},
		{Name: "bronze", Price: "25.00", DailyTasks: 10, Categories: []string{"main", "social"}},
		{Name: "diamond", Price: "50.00", DailyTasks: 15, Categories: []string{"main", "social", "surveys"}},
		{Name: "gold", Price: "75.00", DailyTasks: 20, Categories: []string{"main", "social", "surveys", "testing"}},
		{Name: "vip", Price: "100.00", DailyTasks: 25, Categories: []string{"main", "social", "surveys", "testing", "ai"}},
	}
	c, err := NewTierCatalog(cfgs)
	if err != nil {
		panic(err) // the built-in table is statically valid
	}
	return c
}

func validCategory(c model.Category) bool {
	for _, known := range model.Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Rank returns the tier's position in the order, for >=/< comparisons.
func (c *TierCatalog) Rank(tier model.Tier) (int, error) {
	for i, t := range c.order {
		if t == tier {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
}

// LimitsFor returns the daily quota and category entitlements of a tier.
func (c *TierCatalog) LimitsFor(tier model.Tier) (TierLimits, error) {
	limits, ok := c.limits[tier]
	if !ok {
		return TierLimits{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return limits, nil
}

// PriceFor returns the subscription price of a tier.
func (c *TierCatalog) PriceFor(tier model.Tier) (decimal.Decimal, error) {
	price, ok := c.prices[tier]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return price, nil
}

// CanAccess reports whether a user on userTier may take a task gated at
// taskTier.
func (c *TierCatalog) CanAccess(userTier, taskTier model.Tier) (bool, error) {
	userRank, err := c.Rank(userTier)
	if err != nil {
		return false, err
	}
	taskRank, err := c.Rank(taskTier)
	if err != nil {
		return false, err
	}
	return userRank >= taskRank, nil
}

// AllowsCategory reports whether the tier unlocks the category.
func (c *TierCatalog) AllowsCategory(tier model.Tier, category model.Category) (bool, error) {
	limits, err := c.LimitsFor(tier)
	if err != nil {
		return false, err
	}
	for _, cat := range limits.Categories {
		if cat == category {
			return true, nil
		}
	}
	return false, nil
}

// Top returns the highest-ranked tier. Used for the explicit admin
// full-access capability.
func (c *TierCatalog) Top() model.Tier {
	return c.order[len(c.order)-1]
}

// Tiers returns the tier order, lowest first.
func (c *TierCatalog) Tiers() []model.Tier {
	out := make([]model.Tier, len(c.order))
	copy(out, c.order)
	return out
}
