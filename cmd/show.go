package cmd

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"

	"github.com/saudanwar3/portfolio"
	"github.com/saudanwar3/portfolio/renderer"
	"github.com/saudanwar3/portfolio/stream"
)

// showCmd holds the flags for the 'show' subcommand.
type showCmd struct {
	currency string
	timeout  time.Duration
	raw      bool
	json     bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display the portfolio valuation" }
func (*showCmd) Usage() string {
	return `folio show [-c <currency>] [-raw | -json]

  Fetches the portfolio and displays its balance and positions.
  With -json, the valuation is printed as a portfolio payload instead.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "c", "", "Reporting currency of the balance. Defaults to the configured one.")
	f.DurationVar(&c.timeout, "timeout", 30*time.Second, "Maximum time to fetch the portfolio")
	f.BoolVar(&c.raw, "raw", false, "print raw markdown")
	f.BoolVar(&c.json, "json", false, "print the valuation as a JSON portfolio payload")
}

func (c *showCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("Error loading configuration: %v", err)
	}
	currency := reportCurrency(c.currency, cfg)

	st := newStream(cfg.Stream)
	defer st.Close()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if err := st.Load(ctx, newFetcher(cfg.Source)); err != nil {
		if !c.json {
			printMarkdown(renderer.UnavailableMarkdown(err), c.raw)
		}
		return fail("Error loading portfolio: %v", err)
	}

	// tick 0 is delivered before Subscribe returns.
	snaps := make(chan portfolio.Snapshot, 1)
	sub, err := st.Subscribe(func(u stream.Update) {
		if u.State != stream.Running {
			return
		}
		select {
		case snaps <- u.Snapshot:
		default:
		}
	})
	if err != nil {
		return fail("Error subscribing to portfolio: %v", err)
	}
	sub.Cancel()

	select {
	case snap := <-snaps:
		if c.json {
			if err := portfolio.EncodePortfolio(stdout, portfolio.SnapshotPortfolio(snap)); err != nil {
				return fail("Error: %v", err)
			}
			return subcommands.ExitSuccess
		}
		printMarkdown(renderer.Markdown(renderer.FormatSnapshot(snap, currency)), c.raw)
		return subcommands.ExitSuccess
	default:
		return fail("Error: no valuation available")
	}
}
