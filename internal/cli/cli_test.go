package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/noor-reader/noor/internal/content"
	"github.com/noor-reader/noor/internal/domain"
)

func TestRenderBar(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{0, "[" + strings.Repeat(".", barWidth) + "]"},
		{-10, "[" + strings.Repeat(".", barWidth) + "]"},
		{100, "[" + strings.Repeat("=", barWidth) + "]"},
		{250, "[" + strings.Repeat("=", barWidth) + "]"},
		{50, "[" + strings.Repeat("=", 14) + ">" + strings.Repeat(".", 15) + "]"},
	}
	for _, tt := range tests {
		if got := renderBar(tt.pct); got != tt.want {
			t.Errorf("renderBar(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}

func TestPrintLevel(t *testing.T) {
	var buf bytes.Buffer
	printLevel(&buf, domain.UserLevel{XP: 2420, Level: 3}, 580, 42)
	out := buf.String()
	for _, want := range []string{"Level 3", "42%", "580 XP to level 4", "total 2420 XP"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "record", "streak", "level", "stats", "history",
		"badges", "achievements", "check", "import-guest", "token"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestRequireUser(t *testing.T) {
	if err := requireUser(""); err == nil {
		t.Error("empty user should fail")
	}
	if err := requireUser("u1"); err != nil {
		t.Errorf("requireUser(u1) = %v", err)
	}
}

func TestRecordExamplesResolve(t *testing.T) {
	cat := content.New()
	for _, line := range strings.Split(recordCmd.Example, "\n") {
		f := strings.Fields(line)
		if len(f) < 4 || f[0] != "noor" || f[1] != "record" {
			t.Fatalf("unexpected example line %q", line)
		}
		if _, ok := cat.Lookup(domain.ActivityKind(f[2]), f[3]); !ok {
			t.Errorf("example %q names unknown content %s %s", line, f[2], f[3])
		}
	}
	if !strings.Contains(recordCmd.Long, "nawawi40") {
		t.Error("record help should list hadith collections")
	}
}
