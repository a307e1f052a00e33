package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/pkg/nntplog"
)

var (
	flagAddress        string
	flagGroup          string
	flagHierarchy      string
	flagEmail          string
	flagDomain         string
	flagLocalAddress   string
	flagTimeLimit      time.Duration
	flagTrigger        string
	flagTriggerTimeout time.Duration
	flagNNRPUser       string
	flagNNRPPassword   string
	flagNNTPUser       string
	flagNNTPPassword   string
	flagArgs           []string
	flagParallel       int
	flagLogLevel       string
)

var rootCmd = &cobra.Command{
	Use:   "inntest",
	Short: "NNTP conformance test harness",
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagAddress, "address", "", "subject server address (host:port)")
	flags.StringVar(&flagGroup, "group", "", "newsgroup to exercise (default: local.test)")
	flags.StringVar(&flagHierarchy, "hierarchy", "", "wildmat hierarchy prefix (default: local)")
	flags.StringVar(&flagEmail, "email", "", "From address stamped on probe articles")
	flags.StringVar(&flagDomain, "domain", "", "domain stamped in probe message-ids")
	flags.StringVar(&flagLocalAddress, "local-address", "", "loopback peer bind address (host:port)")
	flags.DurationVar(&flagTimeLimit, "time-limit", 0, "propagation wait ceiling (default: 60s)")
	flags.StringVar(&flagTrigger, "trigger", "", "shell command re-run while awaiting propagation")
	flags.DurationVar(&flagTriggerTimeout, "trigger-timeout", 0, "trigger command timeout (default: 10s)")
	flags.StringVar(&flagNNRPUser, "nnrp-user", "", "reader-mode AUTHINFO username")
	flags.StringVar(&flagNNRPPassword, "nnrp-password", "", "reader-mode AUTHINFO password")
	flags.StringVar(&flagNNTPUser, "nntp-user", "", "peer-mode AUTHINFO username")
	flags.StringVar(&flagNNTPPassword, "nntp-password", "", "peer-mode AUTHINFO password")
	flags.StringArrayVar(&flagArgs, "arg", nil, "per-test override, test:key=value (repeatable)")
	flags.IntVar(&flagParallel, "parallel", 1, "maximum concurrent tests")
	flags.StringVar(&flagLogLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(interactiveCmd)
}

// buildConfig assembles a config.Config from the bound flags, falling back
// to config.Default's values for anything left unset.
func buildConfig() (*config.Config, error) {
	level, err := nntplog.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing --log-level: %w", err)
	}
	nntplog.AddLogger("inntest", os.Stderr, level, true)

	raw := map[string]interface{}{}
	if flagGroup != "" {
		raw["group"] = flagGroup
	}
	if flagHierarchy != "" {
		raw["hierarchy"] = flagHierarchy
	}
	if flagEmail != "" {
		raw["email"] = flagEmail
	}
	if flagDomain != "" {
		raw["domain"] = flagDomain
	}
	if flagTimeLimit != 0 {
		raw["time_limit"] = flagTimeLimit
	}
	if flagTrigger != "" {
		raw["trigger"] = flagTrigger
	}
	if flagTriggerTimeout != 0 {
		raw["trigger_timeout"] = flagTriggerTimeout
	}
	if flagNNRPUser != "" {
		raw["nnrp_user"] = flagNNRPUser
	}
	if flagNNRPPassword != "" {
		raw["nnrp_password"] = flagNNRPPassword
	}
	if flagNNTPUser != "" {
		raw["nntp_user"] = flagNNTPUser
	}
	if flagNNTPPassword != "" {
		raw["nntp_password"] = flagNNTPPassword
	}
	if flagAddress != "" {
		host, port, err := splitAddress(flagAddress)
		if err != nil {
			return nil, fmt.Errorf("parsing --address: %w", err)
		}
		raw["address"] = map[string]interface{}{"host": host, "port": port}
	}
	if flagLocalAddress != "" {
		host, port, err := splitAddress(flagLocalAddress)
		if err != nil {
			return nil, fmt.Errorf("parsing --local-address: %w", err)
		}
		raw["local_server_address"] = map[string]interface{}{"host": host, "port": port}
	}

	cfg, err := config.Decode(raw)
	if err != nil {
		return nil, err
	}

	for _, a := range flagArgs {
		test, kv, ok := strings.Cut(a, ":")
		if !ok {
			return nil, fmt.Errorf("malformed --arg %q: want test:key=value", a)
		}
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("malformed --arg %q: want test:key=value", a)
		}
		cfg.SetTestArg(test, key, value)
	}

	return cfg, nil
}

func splitAddress(addr string) (string, int, error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("missing port in %q", addr)
	}
	host := addr[:idx]
	var port int
	if _, err := fmt.Sscanf(addr[idx+1:], "%d", &port); err != nil {
		return "", 0, fmt.Errorf("invalid port in %q: %w", addr, err)
	}
	return host, port, nil
}
