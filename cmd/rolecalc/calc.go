package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"alias-heaven-calculator/internal/models"
	"alias-heaven-calculator/internal/roles"
)

type calcOutput struct {
	Input  models.Input `json:"input"`
	Result roles.Result `json:"result"`
	Lines  []string     `json:"lines"`
}

func newCalcCmd(c *cli) *cobra.Command {
	var (
		general, counting, converted, earned, quacks int64
		secretArea, legacyToNegacy, asJSON           bool
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate roles for the given counters",
		Example: `  rolecalc calc --general 600 --secret-area --converted 1
  rolecalc calc --quacks 120 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := c.calculator()
			if err != nil {
				return err
			}

			var in models.Input
			in.SetGeneralMessages(general)
			in.SetCountingMessages(counting)
			in.SetSecretArea(secretArea)
			in.SetNegaciesConverted(converted)
			in.SetLegacyToNegacy(legacyToNegacy)
			in.SetNegaciesEarned(earned)
			in.SetQuacks(quacks)

			res := calc.Compute(in)
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(calcOutput{Input: in, Result: res, Lines: res.Lines()})
			}
			for _, line := range res.Lines() {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int64Var(&general, "general", 0, "Messages sent in general")
	f.Int64Var(&counting, "counting", 0, "Messages sent in counting")
	f.BoolVar(&secretArea, "secret-area", false, "The secret area was bought")
	f.Int64Var(&converted, "converted", 0, "Roles converted between negacy and legacy")
	f.BoolVar(&legacyToNegacy, "legacy-to-negacy", false, "Conversion went from legacies into negacies")
	f.Int64Var(&earned, "earned", 0, "Negacies earned")
	f.Int64Var(&quacks, "quacks", 0, "Quacks")
	f.BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}
