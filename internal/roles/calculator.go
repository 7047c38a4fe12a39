package roles

import (
	"fmt"
	"math"

	"alias-heaven-calculator/internal/models"
)

// Result is everything the calculator derives from one Input.
type Result struct {
	Legacy      int64     `json:"legacy"`
	Negacy      int64     `json:"negacy"`
	QuackerTier int       `json:"quacker_tier"`
	QuackerRole string    `json:"quacker_role"`
	Breakdown   Breakdown `json:"breakdown"`
}

// Breakdown explains how Legacy was reached and how far the next tiers are.
type Breakdown struct {
	Conversion        int64  `json:"conversion"`
	GeneralTiers      int    `json:"general_tiers"`
	CountingTiers     int    `json:"counting_tiers"`
	SecretAreaPenalty int64  `json:"secret_area_penalty"`
	NextGeneral       *int64 `json:"next_general,omitempty"`
	NextCounting      *int64 `json:"next_counting,omitempty"`
	NextQuacker       *int64 `json:"next_quacker,omitempty"`
}

// Lines renders the result the way the calculator window shows it.
func (r Result) Lines() []string {
	return []string{
		fmt.Sprintf("Final role: Legacy %d", r.Legacy),
		fmt.Sprintf("Final role: Negacy %d", r.Negacy),
		fmt.Sprintf("Final role: %s", r.QuackerRole),
	}
}

// Calculator derives role levels from a validated Config.
// All methods are pure; a Calculator is safe for concurrent use.
type Calculator struct {
	cfg Config
}

// New validates cfg and returns a calculator over a private copy of it.
func New(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{cfg: cfg.Clone()}, nil
}

// NewDefault returns a calculator over the embedded configuration.
func NewDefault() *Calculator {
	c, err := New(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("roles: embedded defaults invalid: %v", err))
	}
	return c
}

// Config returns a copy of the configuration in use.
func (c *Calculator) Config() Config { return c.cfg.Clone() }

// addSat adds with saturation at the int64 bounds, so a Calculator handed
// unclamped input still never wraps around.
func addSat(a, b int64) int64 {
	sum := a + b
	if a > 0 && b > 0 && sum < 0 {
		return math.MaxInt64
	}
	if a < 0 && b < 0 && sum >= 0 {
		return math.MinInt64
	}
	return sum
}

func negSat(v int64) int64 {
	if v == math.MinInt64 {
		return math.MaxInt64
	}
	return -v
}

// conversion is the signed amount the negacy conversion adds to legacies.
func conversion(in models.Input) int64 {
	if in.LegacyToNegacy {
		return negSat(in.NegaciesConverted)
	}
	return in.NegaciesConverted
}

// Legacy returns the legacy role level. It may be negative.
func (c *Calculator) Legacy(in models.Input) int64 {
	level := conversion(in)
	level = addSat(level, int64(c.cfg.GeneralLegacies.Met(in.GeneralMessages)))
	level = addSat(level, int64(c.cfg.CountingLegacies.Met(in.CountingMessages)))
	if in.SecretArea {
		level = addSat(level, -c.cfg.SecretAreaCost)
	}
	return level
}

// Negacy returns the negacy role level: earned negacies minus whatever was
// converted away (or plus whatever was converted in).
func (c *Calculator) Negacy(in models.Input) int64 {
	return addSat(in.NegaciesEarned, negSat(conversion(in)))
}

// Quacker returns the quacker tier index and its display name.
func (c *Calculator) Quacker(in models.Input) (int, string) {
	tier := c.cfg.QuackerRoles.Met(in.Quacks)
	return tier, c.cfg.QuackerRoleNames[tier]
}

// Compute runs every calculation for in.
func (c *Calculator) Compute(in models.Input) Result {
	tier, name := c.Quacker(in)
	bd := Breakdown{
		Conversion:    conversion(in),
		GeneralTiers:  c.cfg.GeneralLegacies.Met(in.GeneralMessages),
		CountingTiers: c.cfg.CountingLegacies.Met(in.CountingMessages),
	}
	if in.SecretArea {
		bd.SecretAreaPenalty = c.cfg.SecretAreaCost
	}
	if v, ok := c.cfg.GeneralLegacies.Next(in.GeneralMessages); ok {
		bd.NextGeneral = &v
	}
	if v, ok := c.cfg.CountingLegacies.Next(in.CountingMessages); ok {
		bd.NextCounting = &v
	}
	if v, ok := c.cfg.QuackerRoles.Next(in.Quacks); ok {
		bd.NextQuacker = &v
	}
	return Result{
		Legacy:      c.Legacy(in),
		Negacy:      c.Negacy(in),
		QuackerTier: tier,
		QuackerRole: name,
		Breakdown:   bd,
	}
}
