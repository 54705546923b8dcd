package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/authshield/password"
)

type strengthReport struct {
	Score    int      `json:"score"`
	Max      int      `json:"max"`
	Level    string   `json:"level"`
	Color    string   `json:"color"`
	Percent  float64  `json:"percent"`
	Feedback []string `json:"feedback"`
}

func newStrengthCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "strength <password>",
		Short: "Score a candidate password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := password.CheckStrength(args[0])
			lvl := st.Level()
			report := strengthReport{
				Score:    st.Score,
				Max:      password.MaxStrengthScore,
				Level:    lvl.String(),
				Color:    lvl.Color(),
				Percent:  st.Percent(),
				Feedback: st.Feedback,
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Fprintf(out, "score:    %d/%d\n", report.Score, report.Max)
			fmt.Fprintf(out, "strength: %s (%s)\n", report.Level, report.Color)
			fmt.Fprintf(out, "bar:      [%s] %.0f%%\n", bar(report.Percent, 20), report.Percent)
			for _, f := range report.Feedback {
				fmt.Fprintf(out, "  - %s\n", f)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func bar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("#", filled) + strings.Repeat(".", width-filled)
}
