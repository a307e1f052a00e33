// Package runner implements the test registry and execution driver:
// explicit registration of conformance test functions, per-test outcome
// recording, and propagation-wait polling.
package runner

import (
	"sort"
	"sync"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/outcome"
)

// Test is one registered conformance test. It receives the resolved
// configuration and a Recorder to report outcomes through, and returns an
// error only when something unexpected (not already captured as a soft
// outcome) went wrong, or the distinguished outcome.Stop value from a hard
// primitive.
type Test func(cfg *config.Config, r *outcome.Recorder) error

var (
	registryMu sync.Mutex
	registry   = map[string]Test{}
)

// Register adds a test to the registry under name. Called from each test
// file's init(), so the registry is populated by compile-time-checked
// function references rather than reflection or naming-convention
// discovery.
func Register(name string, t Test) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("runner: duplicate test registration: " + name)
	}
	registry[name] = t
}

// Names returns every registered test name, sorted, for the CLI's list
// subcommand.
func Names() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookup returns the registered test, or nil if name is unknown.
func lookup(name string) Test {
	registryMu.Lock()
	defer registryMu.Unlock()
	return registry[name]
}
