package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Ask the support assistant a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		var result struct {
			Reply    string `json:"reply"`
			Degraded bool   `json:"degraded"`
		}
		payload := map[string]any{"message": strings.Join(args, " ")}
		if err := client.post("/chat", payload, &result); err != nil {
			return err
		}

		printResult(result, func() {
			fmt.Println(result.Reply)
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
