package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/ewxrjk/inntest/internal/report"
	"github.com/ewxrjk/inntest/internal/runner"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Run tests one at a time from a line-editing shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		return attach()
	},
}

func attach() error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	fmt.Println("inntest interactive shell - 'list' to list tests, 'run <test>' to run one, 'quit' to exit")

	input := liner.NewLiner()
	defer input.Close()

	input.SetCtrlCAborts(true)
	input.SetTabCompletionStyle(liner.TabPrints)
	input.SetCompleter(completeTestNames)

	for {
		line, err := input.Prompt("inntest> ")
		if err == liner.ErrPromptAborted {
			continue
		} else if err == io.EOF {
			fmt.Println()
			return nil
		} else if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		input.AppendHistory(line)

		if line == "quit" || line == "exit" {
			return nil
		}
		if line == "list" {
			for _, name := range runner.Names() {
				fmt.Println(name)
			}
			continue
		}

		fields := strings.Fields(line)
		if fields[0] != "run" || len(fields) < 2 {
			fmt.Fprintln(os.Stderr, "usage: run <test> [test...]")
			continue
		}

		recs := runner.RunAll(cfg, fields[1:])
		report.Render(os.Stdout, recs)
		report.RenderDetail(os.Stdout, recs)
	}
}

func completeTestNames(line string) []string {
	var matches []string
	for _, name := range runner.Names() {
		candidate := "run " + name
		if strings.HasPrefix(candidate, line) {
			matches = append(matches, candidate)
		}
	}
	return matches
}
