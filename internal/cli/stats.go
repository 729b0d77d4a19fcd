package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a summary of the loaded history",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var result struct {
			Rows           int      `json:"rows"`
			MinYear        int      `json:"min_year"`
			MaxYear        int      `json:"max_year"`
			Categories     []string `json:"categories"`
			MeanCancel     float64  `json:"mean_cancel_percentage"`
			MeanDelay      float64  `json:"mean_delay_percentage"`
			HasPerformance bool     `json:"has_performance"`
		}
		if err := client.get("/stats", &result); err != nil {
			return err
		}

		printResult(result, func() {
			fmt.Printf("Rows: %d (%d-%d)\n", result.Rows, result.MinYear, result.MaxYear)
			fmt.Printf("Mean cancellations: %.2f%%\n", result.MeanCancel)
			fmt.Printf("Mean delays: %.2f%%\n", result.MeanDelay)
			if len(result.Categories) > 0 {
				fmt.Printf("Categories: %s\n", strings.Join(result.Categories, ", "))
			}
			fmt.Printf("Fleet performance joined: %v\n", result.HasPerformance)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
