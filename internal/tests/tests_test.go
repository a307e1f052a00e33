package tests

import (
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/ewxrjk/inntest/internal/config"
	"github.com/ewxrjk/inntest/internal/runner"
)

func newTestConfig(t *testing.T, fs *fakeSubject) *config.Config {
	t.Helper()
	addr := startFakeSubject(t, fs)
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatal(err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Address = config.Address{Host: host, Port: port}
	cfg.Group = fs.group
	cfg.Hierarchy = "local"
	cfg.Email = "test@example.com"
	cfg.Domain = "example.com"
	cfg.TimeLimit = 3 * time.Second
	cfg.LocalServerAddress = config.Address{Host: "127.0.0.1", Port: 0}
	return cfg
}

func TestPostRetrieveEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "post_retrieve")
	if len(r.Fails) != 0 {
		t.Fatalf("expected post_retrieve to pass, got fails: %#v log: %#v", r.Fails, r.Log)
	}
}

func TestCapabilitiesMandatoryVersionEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "capabilities_mandatory_version")
	if len(r.Fails) != 0 {
		t.Fatalf("expected capabilities_mandatory_version to pass, got %#v", r.Fails)
	}
}

func TestErrorsCommandsEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "errors_commands")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_commands to pass, got %#v", r.Fails)
	}
}

func TestDateSanityEndToEnd(t *testing.T) {
	// fakeSubject always answers DATE with a fixed historical timestamp,
	// so this exercises the skew-detection fail path rather than a pass.
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "date_sanity")
	if len(r.Fails) != 1 {
		t.Fatalf("expected date_sanity to fail against a fixed historical clock, got %#v", r.Fails)
	}
}

func TestWildmatListActiveEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "wildmat_list_active")
	if len(r.Fails) != 0 {
		t.Fatalf("expected wildmat_list_active to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestErrorsNoArticleEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "errors_no_article")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_no_article to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestErrorsNoGroupEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "errors_no_group")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_no_group to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestErrorsOutsideGroupEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "errors_outside_group")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_outside_group to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestErrorsGroupNavigationEndToEnd(t *testing.T) {
	fs := newFakeSubject("local.test")
	cfg := newTestConfig(t, fs)
	// Seed one article so low/high aren't both zero and LAST/NEXT have a
	// real boundary to report against.
	if r := runner.RunTest(cfg, "post_retrieve"); len(r.Fails) != 0 {
		t.Fatalf("seeding an article via post_retrieve failed: %#v", r.Fails)
	}
	r := runner.RunTest(cfg, "errors_group_navigation")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_group_navigation to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestErrorsGroupOverviewEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "errors_group_overview")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_group_overview to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestErrorsBadPostEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "errors_bad_post")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_bad_post to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestErrorsBadIhaveEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "errors_bad_ihave")
	if len(r.Fails) != 0 {
		t.Fatalf("expected errors_bad_ihave to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestListKeywordsEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "list_keywords")
	if len(r.Fails) != 0 {
		t.Fatalf("expected list_keywords to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestListWildmatEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	r := runner.RunTest(cfg, "list_wildmat")
	if len(r.Fails) != 0 {
		t.Fatalf("expected list_wildmat to pass, got %#v log: %#v", r.Fails, r.Log)
	}
}

func TestIhavePropagationEndToEnd(t *testing.T) {
	cfg := newTestConfig(t, newFakeSubject("local.test"))
	// fakeSubject accepts IHAVE directly rather than feeding the loopback
	// peer, so propagation never completes; this exercises the timeout
	// path deterministically within a shortened time limit.
	cfg.TimeLimit = 1200 * time.Millisecond
	r := runner.RunTest(cfg, "ihave_propagation")
	if len(r.Fails) != 1 {
		t.Fatalf("expected ihave_propagation to time out against a non-feeding fake subject, got %#v", r.Fails)
	}
}
