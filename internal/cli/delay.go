package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	delayHour int
	delayDay  int
	delayFrom string
	delayTo   string
)

var delayCmd = &cobra.Command{
	Use:   "delay",
	Short: "Predict trip delay minutes between two stations",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		payload := map[string]any{
			"hour":         delayHour,
			"day_of_week":  delayDay,
			"from_station": delayFrom,
			"to_station":   delayTo,
		}

		var result struct {
			DelayMinutes float64 `json:"delay_minutes"`
			OnTime       bool    `json:"on_time"`
		}
		if err := client.post("/predict/delay", payload, &result); err != nil {
			return err
		}

		printResult(result, func() {
			if result.OnTime {
				fmt.Printf("Expected delay: %.1f minutes (on time)\n", result.DelayMinutes)
			} else {
				fmt.Printf("Expected delay: %.1f minutes\n", result.DelayMinutes)
			}
		})
		return nil
	},
}

func init() {
	delayCmd.Flags().IntVar(&delayHour, "hour", 8, "hour of day (0-23)")
	delayCmd.Flags().IntVar(&delayDay, "day", 0, "day of week (0-6, Monday=0)")
	delayCmd.Flags().StringVar(&delayFrom, "from", "", "origin station name")
	delayCmd.Flags().StringVar(&delayTo, "to", "", "destination station name")
	delayCmd.MarkFlagRequired("from")
	delayCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(delayCmd)
}
