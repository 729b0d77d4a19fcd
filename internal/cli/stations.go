package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stationsCmd = &cobra.Command{
	Use:   "stations",
	Short: "List known stations and their codes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var result struct {
			Stations []struct {
				Name string `json:"name"`
				Code int    `json:"code"`
			} `json:"stations"`
		}
		if err := client.get("/stations", &result); err != nil {
			return err
		}

		printResult(result, func() {
			for _, s := range result.Stations {
				fmt.Printf("  %2d  %s\n", s.Code, s.Name)
			}
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stationsCmd)
}
