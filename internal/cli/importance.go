package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importanceCmd = &cobra.Command{
	Use:   "importance",
	Short: "Show which features drive the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var result struct {
			ModelKind string `json:"model_kind"`
			Entries   []struct {
				Name   string  `json:"name"`
				Weight float64 `json:"weight"`
			} `json:"entries"`
		}
		if err := client.get("/model/importance", &result); err != nil {
			return err
		}

		printResult(result, func() {
			fmt.Printf("Feature importance (%s):\n", result.ModelKind)
			for _, e := range result.Entries {
				fmt.Printf("  %-30s %6.2f%%\n", e.Name, e.Weight*100)
			}
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importanceCmd)
}
