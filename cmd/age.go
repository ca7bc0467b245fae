package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/pkloom-cli/internal/demographics"
	"github.com/spf13/cobra"
)

var ageCmd = &cobra.Command{
	Use:   "age <raw...>",
	Short: "Show how free-text ages are parsed into years",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, raw := range args {
			line, err := probeAge(raw)
			if err != nil {
				fmt.Printf("✗ %q: %v\n", raw, err)
				failed++
				continue
			}
			fmt.Println(line)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d age(s) could not be parsed", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ageCmd)
}

func probeAge(raw string) (string, error) {
	years, err := demographics.ParseAge(raw)
	if err != nil {
		return "", err
	}
	unit := demographics.ClassifyUnit(raw)
	if unit == demographics.UnitNone {
		unit = demographics.UnitYears
	}
	return fmt.Sprintf("✓ %q → %s years (unit: %s)", raw, strconv.FormatFloat(years, 'f', -1, 64), unit), nil
}
