package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	forecastMonths int
	forecastMonth  string
	forecastTarget string
)

type forecastOutput struct {
	Target string `json:"target"`
	Model  string `json:"model"`
	Month  string `json:"month,omitempty"`
	Points []struct {
		Year  int     `json:"year"`
		Month int     `json:"month"`
		Value float64 `json:"value"`
		Risk  struct {
			Level string `json:"level"`
		} `json:"risk"`
	} `json:"points"`
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast upcoming months, or one month across years",
	Long: `Without --month, forecasts the next months after the last observed
period. With --month, projects that calendar month for every historical
year plus one year ahead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var result forecastOutput
		if forecastMonth != "" {
			path := fmt.Sprintf("/forecast/month/%s?target=%s", forecastMonth, forecastTarget)
			if err := client.get(path, &result); err != nil {
				return err
			}
		} else {
			payload := map[string]any{"months": forecastMonths, "target": forecastTarget}
			if err := client.post("/forecast", payload, &result); err != nil {
				return err
			}
		}

		printResult(result, func() {
			fmt.Printf("Forecast (%s, %s model):\n", result.Target, result.Model)
			for _, pt := range result.Points {
				fmt.Printf("  %04d-%02d  %6.2f%%  %s\n", pt.Year, pt.Month, pt.Value, pt.Risk.Level)
			}
		})
		return nil
	},
}

func init() {
	forecastCmd.Flags().IntVar(&forecastMonths, "months", 0, "months ahead (0 uses the server default)")
	forecastCmd.Flags().StringVar(&forecastMonth, "month", "", "calendar month to project across years")
	forecastCmd.Flags().StringVar(&forecastTarget, "target", "cancellations", "cancellations or delays")
	rootCmd.AddCommand(forecastCmd)
}
