// Package tests holds the concrete conformance test bodies registered into
// the runner.
package tests

import (
	"fmt"
	"time"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/nntp"
)

// dialSubject connects to the configured subject server with the
// harness's standard timeout and credentials.
func dialSubject(cfg *config.Config) (*nntp.Client, error) {
	creds := nntp.Credentials{
		NNRPUser:     cfg.NNRPUser,
		NNRPPassword: cfg.NNRPPassword,
		NTPUser:      cfg.NNTPUser,
		NTPPassword:  cfg.NNTPPassword,
	}
	return nntp.Dial(cfg.Address.String(), 10*time.Second, nil, creds)
}

// rangeArg formats a low-high article range for HDR/OVER.
func rangeArg(low, high int) string {
	return fmt.Sprintf("%d-%d", low, high)
}
