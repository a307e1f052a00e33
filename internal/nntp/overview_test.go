package nntp

import "testing"

func TestParseOverviewFormat(t *testing.T) {
	got := ParseOverviewFormat([]string{"Subject:", "From:", "Date:", "Message-ID:", "References:", "Bytes:", "Lines:", "Xref:full"})
	want := OverviewFormat{"subject:", "from:", "date:", "message-id:", "references:", ":bytes", ":lines", "xref:"}
	if len(got) != len(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestParseOverviewLine(t *testing.T) {
	format := OverviewFormat{"subject:", "from:", "date:", "message-id:", "references:", ":bytes", ":lines", "xref:"}
	line := "5\thello\tme@example.com\tnow\t<id@example.com>\t\t1200\t40\tXref: news local.test:5"

	n, values, err := ParseOverviewLine(format, line)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Fatalf("expected article number 5, got %d", n)
	}
	if values["subject:"] != "hello" {
		t.Fatalf("subject = %q", values["subject:"])
	}
	if values["message-id:"] != "<id@example.com>" {
		t.Fatalf("message-id = %q", values["message-id:"])
	}
	if values["xref:"] != "news local.test:5" {
		t.Fatalf("xref = %q", values["xref:"])
	}
}

func TestParseOverviewLineMalformedNumber(t *testing.T) {
	if _, _, err := ParseOverviewLine(OverviewFormat{"subject:"}, "notanumber\thello"); err == nil {
		t.Fatal("expected error")
	}
}
