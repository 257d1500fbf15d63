package cmd

import (
	"fmt"

	"github.com/rustyeddy/sessionmap/market"
	"github.com/rustyeddy/sessionmap/risk"
	"github.com/spf13/cobra"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Size one setup with the hybrid stop",
	Long: `Size computes the stop, contract count and risk of a single setup under the
configured policy and checks it against the risk budget.

Example:
  sessionmap size --entry 20150 --stop 20050 --target 20450 --direction long`,
	RunE: runSize,
}

var (
	szEntry     float64
	szStop      float64
	szTarget    float64
	szDirection string
	szJSON      bool
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().Float64Var(&szEntry, "entry", 0, "entry price (required)")
	sizeCmd.Flags().Float64Var(&szStop, "stop", 0, "technical stop price (required)")
	sizeCmd.Flags().Float64Var(&szTarget, "target", 0, "take profit price (required)")
	sizeCmd.Flags().StringVarP(&szDirection, "direction", "d", "", "LONG or SHORT (required)")
	sizeCmd.Flags().BoolVar(&szJSON, "json", false, "print the sizing as JSON")
	sizeCmd.MarkFlagRequired("entry")
	sizeCmd.MarkFlagRequired("stop")
	sizeCmd.MarkFlagRequired("target")
	sizeCmd.MarkFlagRequired("direction")
}

func runSize(cmd *cobra.Command, args []string) error {
	dir, ok := market.ParseDirection(szDirection)
	if !ok {
		return fmt.Errorf("%w: got %q", risk.ErrInvalidDirection, szDirection)
	}

	p := cfg.Policy()
	s, err := risk.SizeSetup(p, risk.Setup{Entry: szEntry, TechnicalStop: szStop, TakeProfit: szTarget, Direction: dir})
	if err != nil {
		return err
	}
	d := risk.Evaluate(p, s)

	out := cmd.OutOrStdout()
	if szJSON {
		return printJSON(out, struct {
			Sizing   risk.Sizing   `json:"sizing"`
			Decision risk.Decision `json:"decision"`
		}{s, d})
	}

	fmt.Fprintf(out, "%s %s @ %.2f\n", cfg.Instrument.Symbol, s.Direction, s.Entry)
	fmt.Fprintf(out, "  Stop:       %.2f (%.2f pts, technical %.2f)\n", s.StopLoss, s.StopLossPoints, s.TechnicalStop)
	fmt.Fprintf(out, "  Target:     %.2f (%.2f pts, RR %.2f)\n", s.TakeProfit, s.TakeProfitPoints, s.RiskRewardRatio)
	fmt.Fprintf(out, "  Contracts:  %d\n", s.PositionSize)
	fmt.Fprintf(out, "  Risk:       $%.2f of $%.2f budget (%.2f%%)\n", s.RiskAmount, p.MaxRisk(), d.PlannedRiskPct)
	fmt.Fprintf(out, "  Potential:  $%.2f\n", s.PotentialProfit)
	if d.Allowed {
		fmt.Fprintln(out, "✓ within policy")
		return nil
	}
	for _, v := range d.Violations {
		fmt.Fprintf(out, "✗ %s: %s\n", v.Code, v.Msg)
	}
	return nil
}
