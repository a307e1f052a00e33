package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewxrjk/inntest/internal/runner"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every registered conformance test",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range runner.Names() {
			fmt.Println(name)
		}
		return nil
	},
}
