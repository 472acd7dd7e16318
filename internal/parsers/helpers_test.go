package parsers

import (
	"strings"
	"testing"

	"github.com/janekbaraniewski/storagereport/internal/core"
)

func int64Ptr(v int64) *int64 { return &v }

func TestParseCount(t *testing.T) {
	tests := []struct {
		input string
		want  *int64
	}{
		{"100", int64Ptr(100)},
		{"-7", int64Ptr(-7)},
		{" 42 ", int64Ptr(42)},
		{"", nil},
		{"abc", nil},
		{"3.14", nil},
		{"0x10", nil},
		{"1e3", nil},
	}

	for _, tt := range tests {
		got := ParseCount(tt.input)
		if tt.want == nil {
			if got != nil {
				t.Errorf("ParseCount(%q) = %v, want nil", tt.input, *got)
			}
		} else {
			if got == nil {
				t.Errorf("ParseCount(%q) = nil, want %v", tt.input, *tt.want)
			} else if *got != *tt.want {
				t.Errorf("ParseCount(%q) = %v, want %v", tt.input, *got, *tt.want)
			}
		}
	}
}

func TestParseLine_Valid(t *testing.T) {
	rec, warn, ok := ParseLine(7, "dc1   host1\tx usr-a 100")
	if !ok {
		t.Fatalf("expected ok, got warning %+v", warn)
	}
	if warn != nil {
		t.Fatalf("unexpected warning: %+v", warn)
	}
	want := core.UsageRecord{Line: 7, Datacenter: "dc1", Host: "host1", Category: "x", Subject: "usr-a", Count: 100}
	if rec != want {
		t.Errorf("ParseLine() = %+v, want %+v", rec, want)
	}
}

func TestParseLine_Rejects(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind core.WarningKind
	}{
		{"four fields", "dc1 host1 x 100", core.WarnMalformedLine},
		{"six fields", "dc1 host1 x usr-a 100 extra", core.WarnMalformedLine},
		{"non numeric", "dc1 host1 x usr-a lots", core.WarnBadCount},
		{"float count", "dc1 host1 x usr-a 1.5", core.WarnBadCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, warn, ok := ParseLine(3, tt.line)
			if ok {
				t.Fatal("expected line to be rejected")
			}
			if warn == nil {
				t.Fatal("expected a warning")
			}
			if warn.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", warn.Kind, tt.kind)
			}
			if warn.Line != 3 {
				t.Errorf("line = %d, want 3", warn.Line)
			}
			if !strings.Contains(warn.Message, tt.line) {
				t.Errorf("message %q should quote the raw line", warn.Message)
			}
		})
	}
}

func TestParseLine_BlankIsSilent(t *testing.T) {
	for _, line := range []string{"", "   ", "\t"} {
		_, warn, ok := ParseLine(1, line)
		if ok || warn != nil {
			t.Errorf("ParseLine(%q) = ok=%v warn=%v, want silent skip", line, ok, warn)
		}
	}
}

func TestSplitLines(t *testing.T) {
	lines := SplitLines([]byte("a b\r\n\nc d"))
	if len(lines) != 3 {
		t.Fatalf("len = %d, want 3", len(lines))
	}
	if lines[0].Text != "a b" || lines[0].Number != 1 {
		t.Errorf("first = %+v", lines[0])
	}
	if lines[1].Text != "" || lines[1].Number != 2 {
		t.Errorf("second = %+v", lines[1])
	}
	if lines[2].Text != "c d" || lines[2].Number != 3 {
		t.Errorf("third = %+v", lines[2])
	}

	if got := SplitLines(nil); len(got) != 0 {
		t.Errorf("SplitLines(nil) = %v, want empty", got)
	}
}

func TestIsNodeSubject(t *testing.T) {
	if !IsNodeSubject("-") || !IsNodeSubject("snapshots") {
		t.Error("sentinels should route to the node view")
	}
	if IsNodeSubject("usr-a") || IsNodeSubject("tmp") {
		t.Error("user subjects should route to the user view")
	}
}

func TestParseRecords(t *testing.T) {
	out := `dn: uuid=abc, ou=users, o=smartdc
login: alice


# only a comment

dn: uuid=def, ou=users, o=smartdc
login: alice
`
	recs := ParseRecords(out)
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2: %v", len(recs), recs)
	}
	if recs[1][0].Value != "uuid=def, ou=users, o=smartdc" || recs[1][1].Value != "alice" {
		t.Errorf("second record = %v", recs[1])
	}
	if got := ParseRecords(""); len(got) != 0 {
		t.Errorf("ParseRecords(\"\") = %v", got)
	}
}

func TestParseKeyValues(t *testing.T) {
	out := `# ldap result
dn: uuid=abc, ou=users, o=smartdc
login: alice

objectclass: sdcperson
not a pair
login:   bob  `

	kvs := ParseKeyValues(out)
	var logins []string
	for _, kv := range kvs {
		if kv.Key == "login" {
			logins = append(logins, kv.Value)
		}
	}
	if len(kvs) != 4 {
		t.Errorf("len = %d, want 4", len(kvs))
	}
	if len(logins) != 2 || logins[0] != "alice" || logins[1] != "bob" {
		t.Errorf("logins = %v, want [alice bob]", logins)
	}
	if kvs[0].Value != "uuid=abc, ou=users, o=smartdc" {
		t.Errorf("dn value = %q", kvs[0].Value)
	}
}
