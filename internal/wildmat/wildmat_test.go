package wildmat

import "testing"

func TestMatchIncludeExclude(t *testing.T) {
	m, err := Compile("local.*,!local.test")
	if err != nil {
		t.Fatal(err)
	}

	cases := map[string]bool{
		"local.foo":       true,
		"local.test":      false,
		"other.local.test": false,
	}
	for candidate, want := range cases {
		if got := m.Match(candidate); got != want {
			t.Errorf("Match(%q) = %v, want %v", candidate, got, want)
		}
	}
}

func TestMatchNegateAll(t *testing.T) {
	m, err := Compile("!*")
	if err != nil {
		t.Fatal(err)
	}
	if m.Match("anything") {
		t.Fatal("expected !* to reject everything")
	}
}

func TestMatchNoMatchRejects(t *testing.T) {
	m, err := Compile("foo.*")
	if err != nil {
		t.Fatal(err)
	}
	if m.Match("bar.baz") {
		t.Fatal("expected no-match candidate to be rejected")
	}
}

func TestMatchLastPatternWins(t *testing.T) {
	m, err := Compile("foo.*,!foo.bar,foo.bar")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Match("foo.bar") {
		t.Fatal("expected last matching pattern (re-include) to win")
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	m, err := Compile("local.*")
	if err != nil {
		t.Fatal(err)
	}
	got := m.Filter([]string{"local.b", "other.a", "local.a"})
	want := []string{"local.b", "local.a"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}
