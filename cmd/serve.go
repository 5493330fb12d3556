package cmd

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/saudanwar3/portfolio/server"
	"github.com/saudanwar3/portfolio/stream"
)

// serveCmd holds the flags for the 'serve' subcommand.
type serveCmd struct {
	addr     string
	currency string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "publish the live portfolio valuation over websocket" }
func (*serveCmd) Usage() string {
	return `folio serve [-addr <addr>] [-c <currency>]

  Serves the live portfolio: GET /ws streams one JSON view per tick,
  GET /view answers the latest view and GET /metrics the prometheus metrics.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Listen address. Defaults to the configured one.")
	f.StringVar(&c.currency, "c", "", "Reporting currency of the balance. Defaults to the configured one.")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		return fail("Error loading configuration: %v", err)
	}
	if c.addr != "" {
		cfg.Server.Addr = c.addr
	}
	cfg.Report.Currency = reportCurrency(c.currency, cfg)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := stream.NewMetrics("folio")
	metrics.MustRegister(reg)

	st := newStream(cfg.Stream, stream.WithMetrics(metrics))
	defer st.Close()

	srv := server.New(st,
		server.WithCurrency(cfg.Report.Currency),
		server.WithGatherer(reg),
		server.WithLogger(log.Logger),
	)
	if err := srv.Start(); err != nil {
		return fail("Error starting server: %v", err)
	}
	// clients connecting before the seed is fetched get the idle frame.
	go func() {
		if err := st.Load(ctx, newFetcher(cfg.Source)); err != nil {
			log.Error().Err(err).Msg("cannot load portfolio")
		}
	}()

	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		return fail("Error serving: %v", err)
	}
	return subcommands.ExitSuccess
}
