package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ewxrjk/inntest/internal/outcome"
)

func TestRenderIncludesTestName(t *testing.T) {
	r := outcome.New("post_retrieve")
	r.Fail("article mismatch")
	r.Skip("streaming unsupported")

	var buf bytes.Buffer
	Render(&buf, []*outcome.Recorder{r})

	out := buf.String()
	if !strings.Contains(out, "post_retrieve") {
		t.Fatalf("expected table to mention the test name, got:\n%s", out)
	}
}

func TestHardFailed(t *testing.T) {
	clean := outcome.New("clean_test")
	failing := outcome.New("failing_test")
	failing.Fail("boom")

	if HardFailed([]*outcome.Recorder{clean}) {
		t.Fatal("expected no hard failure")
	}
	if !HardFailed([]*outcome.Recorder{clean, failing}) {
		t.Fatal("expected a hard failure")
	}
}

func TestRenderDetailSkipsCleanTests(t *testing.T) {
	clean := outcome.New("clean_test")
	failing := outcome.New("failing_test")
	failing.Fail("boom")
	failing.Logf("connected to %s", "127.0.0.1:1119")

	var buf bytes.Buffer
	RenderDetail(&buf, []*outcome.Recorder{clean, failing})

	out := buf.String()
	if strings.Contains(out, "clean_test") {
		t.Fatalf("expected clean test to be omitted from detail, got:\n%s", out)
	}
	if !strings.Contains(out, "failing_test") || !strings.Contains(out, "boom") {
		t.Fatalf("expected failing test detail, got:\n%s", out)
	}
}
