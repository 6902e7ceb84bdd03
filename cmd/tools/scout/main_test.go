package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func runScout(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("scout %v: %v", args, err)
	}
	return out.String()
}

func TestBudgetCommand(t *testing.T) {
	var got struct {
		Revenue struct {
			Min     int64 `json:"min"`
			Max     int64 `json:"max"`
			Average int64 `json:"average"`
		} `json:"revenue"`
		Competition string `json:"competition"`
	}
	out := runScout(t, "budget", "--json", "$15,000 - $25,000")
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Revenue.Min != 15000 || got.Revenue.Max != 25000 || got.Revenue.Average != 20000 {
		t.Fatalf("revenue = %+v", got.Revenue)
	}
	if got.Competition != "medium" {
		t.Fatalf("competition = %q, want medium", got.Competition)
	}
}

func TestOpportunitiesCommandRejectsUnknownCategory(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"opportunities", "--category", "radio-drama"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Score"},
		[][]string{{"hook", "82"}, {"short"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	for _, want := range []string{"Name", "Score", "hook", "82", "short"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable(nil, nil, nil) != "" {
		t.Fatal("empty headers should render nothing")
	}
}
