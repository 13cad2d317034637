package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fixLyricsCmd = &cobra.Command{
	Use:   "fix-lyrics",
	Short: "Strip leading whitespace from every line of stored lyrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.services.Bhajan.FixLyrics(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Fixed %d of %d bhajans\n", result.Fixed, result.Total)
		return nil
	},
}
