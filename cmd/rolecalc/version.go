package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"alias-heaven-calculator/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := buildinfo.Get()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rolecalc %s\n", info.Version)
			if info.Commit != "" {
				fmt.Fprintf(out, "commit: %s\n", info.Commit)
			}
			if info.GoVersion != "" {
				fmt.Fprintf(out, "go: %s\n", info.GoVersion)
			}
			fmt.Fprintln(out, info.BuiltOn())
		},
	}
}
