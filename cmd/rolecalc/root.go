package main

import (
	"os"

	"github.com/spf13/cobra"

	"alias-heaven-calculator/internal/buildinfo"
	"alias-heaven-calculator/internal/roles"
	"alias-heaven-calculator/pkg/config"
	"alias-heaven-calculator/pkg/logging"
)

// cli carries state shared by every subcommand.
type cli struct {
	rolesPath string
	env       *config.Config
	logger    *logging.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "rolecalc",
		Short: "Alias' Heaven role calculator",
		Long: `rolecalc works out Legacy, Negacy and Quacker roles from message counts,
conversions and quacks, using the same role tables as the web calculator.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.env = config.Load()
			c.logger = newLogger(c.env)
			if c.rolesPath == "" {
				c.rolesPath = c.env.RolesFile
			}
		},
	}
	root.SetVersionTemplate("rolecalc version {{.Version}}\n")
	root.PersistentFlags().StringVar(&c.rolesPath, "roles", "", "Role configuration file (.toml, .yaml); defaults to ROLES_FILE or the built-in tables")

	root.AddCommand(
		newCalcCmd(c),
		newValidateCmd(c),
		newRolesCmd(c),
		newVersionCmd(),
	)
	return root
}

// newLogger stays silent unless LOGS=on.
func newLogger(env *config.Config) *logging.Logger {
	if !env.LogsEnabled {
		return logging.Discard()
	}
	return logging.NewLogger(logging.LogConfig{
		Level:  logging.ParseLevel(env.LogLevel),
		Format: "text",
		Output: os.Stderr,
	}).WithComponent("rolecalc")
}

// calculator loads the configured roles and builds a calculator over them.
func (c *cli) calculator() (*roles.Calculator, error) {
	cfg, err := config.LoadRoles(c.rolesPath)
	if err != nil {
		c.logger.Error("Failed to load roles", err, logging.String("path", c.rolesPath))
		return nil, err
	}
	c.logger.Debug("Roles loaded", logging.String("path", c.rolesPath))
	return roles.New(cfg)
}
