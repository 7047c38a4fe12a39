package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"alias-heaven-calculator/pkg/config"
)

func newValidateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a role configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.rolesPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := config.LoadRoles(path); err != nil {
				return err
			}
			if path == "" {
				path = "built-in roles"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			return nil
		},
	}
}
