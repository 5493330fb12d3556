package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"

	"github.com/saudanwar3/portfolio"
	"github.com/saudanwar3/portfolio/renderer"
)

// showAAPL is the view of testdata/portfolio.json at tick 0.
func showAAPL(t *testing.T) string {
	t.Helper()
	r, err := os.Open("testdata/portfolio.json")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	var payload struct{ Portfolio portfolio.Portfolio }
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	s := portfolio.NewSnapshot(0, time.Time{}, payload.Portfolio.Seed())
	return renderer.Markdown(renderer.FormatSnapshot(s, renderer.DefaultCurrency))
}

// setup points the global flags to file and captures stdout.
func setup(t *testing.T, file string) *bytes.Buffer {
	t.Helper()
	for _, k := range []string{"FOLIO_URL", "FOLIO_PATH", "FOLIO_FILE", "FOLIO_CURRENCY", "FOLIO_BOUND", "FOLIO_FLOOR", "FOLIO_ADDR", "FOLIO_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	t.Setenv("FOLIO_INTERVAL", "5ms")
	t.Setenv("FOLIO_SEED", "1")

	oldFile, oldOut := *sourceFile, stdout
	var out bytes.Buffer
	*sourceFile, stdout = file, &out
	t.Cleanup(func() { *sourceFile, stdout = oldFile, oldOut })
	return &out
}

func flags(t *testing.T, c subcommands.Command, args ...string) *flag.FlagSet {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("cannot parse %v: %v", args, err)
	}
	return f
}

func TestShow(t *testing.T) {
	out := setup(t, "testdata/portfolio.json")
	c := &showCmd{}
	f := flags(t, c, "-raw")

	if got := c.Execute(context.Background(), f); got != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want success", got)
	}
	if got, want := out.String(), showAAPL(t); got != want {
		t.Errorf("show output:\n%s\nwant:\n%s", got, want)
	}
}

func TestShow_Unavailable(t *testing.T) {
	out := setup(t, "testdata/missing.json")
	c := &showCmd{}
	f := flags(t, c, "-raw")

	if got := c.Execute(context.Background(), f); got != subcommands.ExitFailure {
		t.Fatalf("Execute() = %v, want failure", got)
	}
	if strings.Count(out.String(), renderer.Placeholder) != 3 {
		t.Errorf("show output lacks the placeholder balance:\n%s", out)
	}
	if !strings.Contains(out.String(), "Portfolio unavailable") {
		t.Errorf("show output lacks the unavailable message:\n%s", out)
	}
}

func TestWatch(t *testing.T) {
	out := setup(t, "testdata/portfolio.json")
	c := &watchCmd{}
	f := flags(t, c, "-raw", "-n", "3")

	if got := c.Execute(context.Background(), f); got != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want success", got)
	}
	got := out.String()
	if !strings.HasPrefix(got, showAAPL(t)) {
		t.Errorf("watch output does not start with the full view:\n%s", got)
	}
	for _, want := range []string{"Tick 1 Balance ", "Tick 2 Balance "} {
		if !strings.Contains(got, want) {
			t.Errorf("watch output lacks %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Tick 3") {
		t.Errorf("watch output goes beyond -n 3:\n%s", got)
	}
}

func TestShow_JSON(t *testing.T) {
	out := setup(t, "testdata/portfolio.json")
	c := &showCmd{}
	f := flags(t, c, "-json")

	if got := c.Execute(context.Background(), f); got != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want success", got)
	}
	p, err := portfolio.DecodePortfolio(out)
	if err != nil {
		t.Fatalf("DecodePortfolio() error = %v", err)
	}
	if len(p.Positions) != 1 || p.Positions[0].Ticker() != "AAPL" {
		t.Fatalf("positions = %+v", p.Positions)
	}
	if p.Positions[0].MarketValue != 1600 || p.Balance.PnL != 100 || p.Balance.Cost != 1500 {
		t.Errorf("valuation = %+v, %+v", p.Positions[0], p.Balance)
	}
}

func TestServe(t *testing.T) {
	setup(t, "testdata/portfolio.json")
	c := &serveCmd{}
	f := flags(t, c, "-addr", "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done := make(chan subcommands.ExitStatus, 1)
	go func() { done <- c.Execute(ctx, f) }()

	select {
	case got := <-done:
		if got != subcommands.ExitSuccess {
			t.Errorf("Execute() = %v, want success", got)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop after the context was canceled")
	}
}

func TestPrintChanges(t *testing.T) {
	out := setup(t, "testdata/portfolio.json")
	prev := renderer.FormatSnapshot(portfolio.NewSnapshot(0, time.Time{}, nil), "")
	next := prev
	next.Tick = 1

	printChanges(prev, next, true)
	if got, want := out.String(), "Tick 1 Balance $0.00 +$0.00 +0.00%\n"; got != want {
		t.Errorf("printChanges() = %q, want %q", got, want)
	}
}

func TestPaint(t *testing.T) {
	if got := paint(renderer.Positive, "+$1.00", true); got != "+$1.00" {
		t.Errorf("paint(raw) = %q", got)
	}
	if got := paint(renderer.Neutral, renderer.Placeholder, false); got != renderer.Placeholder {
		t.Errorf("paint(Neutral) = %q", got)
	}
	if got := paint(renderer.Negative, "-$1.00", false); !strings.Contains(got, "-$1.00") {
		t.Errorf("paint(Negative) = %q", got)
	}
}
