package main

import (
	"github.com/spf13/cobra"

	"alias-heaven-calculator/pkg/config"
)

func newRolesCmd(c *cli) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "roles",
		Short: "Print the role tables in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := c.calculator()
			if err != nil {
				return err
			}
			return config.EncodeRoles(cmd.OutOrStdout(), calc.Config(), format)
		},
	}
	cmd.Flags().StringVar(&format, "format", config.FormatTOML, "Output format (toml, yaml)")
	return cmd
}
