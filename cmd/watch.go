package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/subcommands"

	"github.com/saudanwar3/portfolio/renderer"
	"github.com/saudanwar3/portfolio/stream"
)

// watchCmd holds the flags for the 'watch' subcommand.
type watchCmd struct {
	currency string
	count    int
	raw      bool
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "follow the live portfolio valuation" }
func (*watchCmd) Usage() string {
	return `folio watch [-c <currency>] [-n <ticks>] [-raw]

  Displays the portfolio, then prints the balance and the positions whose
  display changed on every tick, until interrupted.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Reporting currency of the balance. Defaults to the configured one.")
	f.IntVar(&c.count, "n", 0, "Stop after this number of ticks, 0 for no limit")
	f.BoolVar(&c.raw, "raw", false, "print raw markdown")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("Error loading configuration: %v", err)
	}
	currency := reportCurrency(c.currency, cfg)

	st := newStream(cfg.Stream)
	defer st.Close()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if err := st.Load(ctx, newFetcher(cfg.Source)); err != nil {
		printMarkdown(renderer.UnavailableMarkdown(err), c.raw)
		return fail("Error loading portfolio: %v", err)
	}

	updates := make(chan stream.Update, 1)
	sub, err := st.Subscribe(func(u stream.Update) {
		select {
		case updates <- u:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return fail("Error subscribing to portfolio: %v", err)
	}
	defer sub.Cancel()

	var prev renderer.View
	for n := 0; ; {
		var u stream.Update
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case u = <-updates:
		}

		switch u.State {
		case stream.Running:
			v := renderer.FormatSnapshot(u.Snapshot, currency)
			if n == 0 {
				printMarkdown(renderer.Markdown(v), c.raw)
			} else {
				printChanges(prev, v, c.raw)
			}
			prev = v
			n++
			if c.count > 0 && n >= c.count {
				return subcommands.ExitSuccess
			}
		case stream.Unavailable:
			printMarkdown(renderer.UnavailableMarkdown(u.Err), c.raw)
			return subcommands.ExitFailure
		case stream.Stopped:
			return subcommands.ExitSuccess
		}
	}
}

// printChanges prints the balance of next, then the rows that display
// differently than in prev. Profits and losses are colored unless raw.
func printChanges(prev, next renderer.View, raw bool) {
	b := next.Balance
	fmt.Fprintf(stdout, "Tick %d Balance %s %s\n", next.Tick, b.NetValue, paint(b.Class, b.PnL+" "+b.PnLPercentage, raw))
	for _, i := range renderer.Changed(prev, next) {
		p := next.Positions[i]
		fmt.Fprintf(stdout, "Tick %d %s %s %s %s %s\n", next.Tick, p.Ticker, p.QuantityLabel(), p.PriceLabel(), p.MarketValue, paint(p.Class, p.PnL+" "+p.PnLPercentage, raw))
	}
}

// paint colors s after its class.
func paint(c renderer.Class, s string, raw bool) string {
	if raw || c.Color() == "" {
		return s
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color())).Render(s)
}
