package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	predictYear      int
	predictMonth     int
	predictTarget    string
	predictFillMeans bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the cancellation or delay percentage for one period",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		payload := map[string]any{
			"features": map[string]float64{
				"year":  float64(predictYear),
				"month": float64(predictMonth),
			},
			"fill_means": predictFillMeans,
			"target":     predictTarget,
		}

		var result struct {
			Target     string  `json:"target"`
			Prediction float64 `json:"prediction"`
			Risk       struct {
				Level            string  `json:"level"`
				EstimatedCost    float64 `json:"estimated_cost"`
				PotentialSavings float64 `json:"potential_savings"`
				Recommendation   string  `json:"recommendation"`
			} `json:"risk"`
		}
		if err := client.post("/predict", payload, &result); err != nil {
			return err
		}

		printResult(result, func() {
			fmt.Printf("Predicted %s for %d-%02d: %.2f%%\n",
				result.Target, predictYear, predictMonth, result.Prediction)
			fmt.Printf("Risk: %s\n", result.Risk.Level)
			fmt.Printf("Estimated cost: $%.2f\n", result.Risk.EstimatedCost)
			fmt.Printf("Potential savings: $%.2f\n", result.Risk.PotentialSavings)
			fmt.Println(result.Risk.Recommendation)
		})
		return nil
	},
}

func init() {
	predictCmd.Flags().IntVar(&predictYear, "year", 0, "year to predict")
	predictCmd.Flags().IntVar(&predictMonth, "month", 0, "month to predict (1-12)")
	predictCmd.Flags().StringVar(&predictTarget, "target", "cancellations", "cancellations or delays")
	predictCmd.Flags().BoolVar(&predictFillMeans, "fill-means", true, "fill missing covariates with historical means")
	predictCmd.MarkFlagRequired("year")
	predictCmd.MarkFlagRequired("month")
	rootCmd.AddCommand(predictCmd)
}
