package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/storagereport/internal/config"
	"github.com/janekbaraniewski/storagereport/internal/core"
	"github.com/janekbaraniewski/storagereport/internal/identity"
	"github.com/janekbaraniewski/storagereport/internal/report"
	"github.com/janekbaraniewski/storagereport/internal/usage"
)

type reportOptions struct {
	noResolve  bool
	configPath string
	top        int
	topSet     bool
	gauges     bool
	gaugesSet  bool
}

func loadConfig(path string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if path == "" {
		path = config.ConfigPath()
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFrom(path)
	}
	if err != nil {
		return cfg, fmt.Errorf("loading config: %w", err)
	}
	log.Printf("config: %s (max_users=%d, lookup=%q)", path, cfg.MaxUsers, cfg.Lookup.Command)
	return cfg, nil
}

// runReport reads all input, aggregates it, resolves the top users and
// renders the report, in that order.
func runReport(ctx context.Context, opts reportOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.topSet {
		cfg.MaxUsers = opts.top
	}
	if opts.gaugesSet {
		cfg.Report.Gauges = opts.gauges
	}

	if f, ok := stdin.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(stderr, "reading usage records from the terminal; end input with Ctrl-D")
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	sink := core.WriterSink{W: stderr}
	acc := usage.NewAccumulator(sink)
	stats := acc.Ingest(data)
	log.Printf("ingest: %d lines, %d user records, %d node records, %d rejected",
		stats.Lines, stats.UserRecords, stats.NodeRecords, stats.Rejected)

	top := acc.Users.Finalize(cfg.MaxUsers)
	special := core.NewSpecialSet(cfg.SpecialIdentifiers)

	resolver := &identity.Resolver{
		Lookup:   identity.CommandLookup{Command: cfg.Lookup.Command},
		Special:  special,
		Disabled: opts.noResolve,
		Timeout:  cfg.Lookup.Timeout(),
		Sink:     sink,
	}
	ids := lo.Map(top, func(d core.UserDetail, _ int) string { return d.Identifier })
	names := resolver.Resolve(ctx, ids)
	log.Printf("identity: resolved %d of %d identifiers", len(names), len(ids))

	renderer := report.New(report.Options{
		LabelWidth: cfg.Report.LabelWidth,
		Gauges:     cfg.Report.Gauges,
		Layout:     nodeLayout(cfg.Node),
	})
	return renderer.Render(stdout, report.Input{
		Users:      top,
		TotalUsers: acc.Users.Len(),
		GrandTotal: acc.Users.GrandTotal(),
		Names:      names,
		Special:    special,
		Nodes:      acc.Nodes,
	})
}

func nodeLayout(n config.NodeConfig) report.NodeLayout {
	return report.NodeLayout{
		DatasetPrefix:   n.DatasetPrefix,
		PoolUsed:        n.PoolUsed,
		PoolAvail:       n.PoolAvail,
		CrashCategory:   n.CrashCategory,
		CrashUnitFactor: n.CrashUnitFactor,
	}
}
