package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ewxrjk/inntest/internal/outcome"
	"github.com/ewxrjk/inntest/internal/report"
	"github.com/ewxrjk/inntest/internal/runner"
)

var runCmd = &cobra.Command{
	Use:   "run [test names...]",
	Short: "Run conformance tests against the configured subject",
	Long:  "Run the named tests, or every registered test if none are given, and print a results table. Exits 1 if any test recorded a fail.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTests(args)
	},
}

func runTests(names []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	if len(names) == 0 {
		names = runner.Names()
	} else {
		for _, name := range names {
			if !isRegistered(name) {
				return fmt.Errorf("no such test: %s", name)
			}
		}
	}

	var recs []*outcome.Recorder
	if flagParallel > 1 {
		recs = runner.RunAllParallel(cfg, names, flagParallel)
	} else {
		recs = runner.RunAll(cfg, names)
	}

	report.Render(os.Stdout, recs)
	report.RenderDetail(os.Stdout, recs)

	if report.HardFailed(recs) {
		os.Exit(1)
	}
	return nil
}

func isRegistered(name string) bool {
	for _, n := range runner.Names() {
		if n == name {
			return true
		}
	}
	return false
}
