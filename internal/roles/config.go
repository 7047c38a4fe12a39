package roles

import (
	"bytes"
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"alias-heaven-calculator/internal/models"
	errs "alias-heaven-calculator/pkg/errors"
)

//go:embed defaults/roles.toml
var defaultRolesTOML []byte

// Config is the role configuration. It is loaded once at startup and
// treated as immutable; a reload builds a new Calculator instead of
// mutating this one.
type Config struct {
	GeneralLegacies  Thresholds `toml:"general_legacies" yaml:"general_legacies" json:"general_legacies"`
	CountingLegacies Thresholds `toml:"counting_legacies" yaml:"counting_legacies" json:"counting_legacies"`
	SecretAreaCost   int64      `toml:"secret_area_cost" yaml:"secret_area_cost" json:"secret_area_cost"`
	QuackerRoles     Thresholds `toml:"quacker_roles" yaml:"quacker_roles" json:"quacker_roles"`
	QuackerRoleNames []string   `toml:"quacker_roles_names" yaml:"quacker_roles_names" json:"quacker_roles_names"`
}

// DefaultTOML returns the embedded default configuration as written on disk.
func DefaultTOML() []byte {
	return append([]byte(nil), defaultRolesTOML...)
}

// DefaultConfig returns the embedded role configuration.
// The embedded file is covered by tests, so a decode failure is a build defect.
func DefaultConfig() Config {
	var cfg Config
	if _, err := toml.NewDecoder(bytes.NewReader(defaultRolesTOML)).Decode(&cfg); err != nil {
		panic(fmt.Sprintf("roles: embedded defaults: %v", err))
	}
	return cfg
}

// Validate checks the preconditions the calculator relies on and reports
// every violation at once.
func (c Config) Validate() error {
	var problems []string
	if !c.GeneralLegacies.Sorted() {
		problems = append(problems, "general_legacies must be sorted ascending")
	}
	if !c.CountingLegacies.Sorted() {
		problems = append(problems, "counting_legacies must be sorted ascending")
	}
	if !c.QuackerRoles.Sorted() {
		problems = append(problems, "quacker_roles must be sorted ascending")
	}
	if c.SecretAreaCost < 0 || c.SecretAreaCost > models.MaxCounter {
		problems = append(problems, fmt.Sprintf("secret_area_cost must be in [0, %d], got %d", models.MaxCounter, c.SecretAreaCost))
	}
	if want := len(c.QuackerRoles) + 1; len(c.QuackerRoleNames) != want {
		problems = append(problems, fmt.Sprintf("quacker_roles_names needs %d entries (one per tier including tier 0), got %d", want, len(c.QuackerRoleNames)))
	}
	if len(problems) > 0 {
		return errs.NewValidationFields("roles.Config.Validate", "invalid role configuration", problems)
	}
	return nil
}

// Clone returns a deep copy so callers can't alias the calculator's slices.
func (c Config) Clone() Config {
	return Config{
		GeneralLegacies:  append(Thresholds(nil), c.GeneralLegacies...),
		CountingLegacies: append(Thresholds(nil), c.CountingLegacies...),
		SecretAreaCost:   c.SecretAreaCost,
		QuackerRoles:     append(Thresholds(nil), c.QuackerRoles...),
		QuackerRoleNames: append([]string(nil), c.QuackerRoleNames...),
	}
}
