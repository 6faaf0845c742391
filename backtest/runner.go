// Package backtest wires a configured strategy, account and history into
// one replayed simulation run and summarizes the result.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/stratsim/account"
	"github.com/rustyeddy/stratsim/config"
	"github.com/rustyeddy/stratsim/internal/id"
	"github.com/rustyeddy/stratsim/journal"
	"github.com/rustyeddy/stratsim/market"
	"github.com/rustyeddy/stratsim/replay"
	"github.com/rustyeddy/stratsim/sim"
	"github.com/rustyeddy/stratsim/strategies"
	"github.com/rustyeddy/stratsim/strategy"
)

// Options controls a single run.
type Options struct {
	// RunID defaults to a fresh ULID.
	RunID string

	// ReportPath, when set, receives an org-mode report.
	ReportPath string

	// Feeds replaces loading the configured data files.
	Feeds map[string][]market.Bar

	// Progress, when set, is called after every replayed bar.
	Progress func(done, total int)

	Logger logrus.FieldLogger
}

// Outcome is everything a finished run produced.
type Outcome struct {
	Summary Summary
	Result  replay.Result
	Params  strategy.Values

	// Err is the hook failure that ended the run early, if any.
	Err error
}

// Run executes the backtest described by cfg. It returns an error when the
// run could not be set up. A strategy failure during the replay still
// yields an Outcome, with Err set.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Outcome, error) {
	if cfg == nil {
		return nil, fmt.Errorf("backtest: config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	runID := opts.RunID
	if runID == "" {
		runID = id.New()
	}
	log = log.WithField("run", runID)

	symbols, feeds, err := loadFeeds(cfg, opts.Feeds, log)
	if err != nil {
		return nil, err
	}

	decl, err := strategies.ParamsOf(cfg.Strategy.Name)
	if err != nil {
		return nil, err
	}
	params, err := strategy.ResolveParams(decl, cfg.Strategy.Params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfg.Strategy.Name, err)
	}
	strat, err := strategies.New(cfg.Strategy.Name, cfg.Strategy.Symbol, cfg.Strategy.Params)
	if err != nil {
		return nil, err
	}

	ledger, err := account.New(account.Config{
		ID:       cfg.Account.ID,
		Currency: cfg.Account.Currency,
		Balance:  cfg.Account.Balance,
		Leverage: cfg.Account.Leverage,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	monitor := account.NewMarginMonitor(ledger, cfg.Account.MarginCallLevel)
	defer monitor.Close()

	j, err := OpenJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}
	if j != nil {
		defer func() {
			if err := j.Close(); err != nil {
				log.WithError(err).Error("close journal")
			}
		}()
	}

	equity := NewEquityRecorder(ledger, j, runID, log)
	defer equity.Close()

	clock := replay.NewClock(firstBar(feeds))
	engine, err := sim.NewEngine(sim.Config{
		Ledger:  ledger,
		Clock:   clock,
		Journal: j,
		RunID:   runID,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	orch, err := replay.New(replay.Config{
		Feeds:   feeds,
		Clock:   clock,
		Results: engine,
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}

	if opts.Progress != nil {
		for _, sym := range symbols {
			unsub := sym.OnBar(func(*market.Symbol, int) error {
				opts.Progress(orch.Progress())
				return nil
			})
			defer unsub()
		}
	}

	lc, err := strategy.New(strategy.Config{
		Name:     cfg.Strategy.Name,
		Strategy: strat,
		Engine:   engine,
		Symbols:  symbols,
		Mode:     strategy.Backtest,
		Driver:   orch,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"strategy": cfg.Strategy.Name,
		"symbols":  len(symbols),
		"balance":  cfg.Account.Balance,
	}).Info("backtest starting")

	runErr := lc.Start(ctx)
	if lc.State() == strategy.Paused {
		// nobody resumes a headless run
		log.Warn("strategy paused the replay, stopping")
		runErr = errors.Join(runErr, lc.Stop())
	}
	var fault *strategy.Fault
	if runErr != nil && !errors.As(runErr, &fault) {
		return nil, runErr
	}

	res, err := orch.GetResult()
	if err != nil {
		return nil, err
	}

	sum := Summarize(res.Trades, cfg.Account.Balance, res.Balance, res.Equity, equity.Curve())
	sum.RunID = runID
	sum.Strategy = cfg.Strategy.Name
	sum.Start, sum.End, sum.Bars = res.Start, res.End, res.Bars
	for _, s := range symbols {
		sum.Symbols = append(sum.Symbols, s.Name)
	}

	if rr, ok := j.(journal.RunRecorder); ok {
		if err := rr.RecordRun(sum.Record(time.Now())); err != nil {
			log.WithError(err).Error("journal run")
		}
	}
	if opts.ReportPath != "" {
		rep := Report{Summary: sum, Params: params, Created: time.Now()}
		if runErr != nil {
			rep.Notes = append(rep.Notes, fmt.Sprintf("run ended early: %v", runErr))
		}
		if err := rep.WriteOrgFile(opts.ReportPath); err != nil {
			return nil, err
		}
	}

	log.WithFields(logrus.Fields{
		"trades":  sum.Trades,
		"net_pl":  sum.NetPL,
		"balance": sum.EndBalance,
	}).Info("backtest finished")

	return &Outcome{Summary: sum, Result: res, Params: params, Err: runErr}, nil
}

func loadFeeds(cfg *config.Config, given map[string][]market.Bar, log logrus.FieldLogger) ([]*market.Symbol, []replay.Feed, error) {
	infos := cfg.SymbolInfos()
	symbols := make([]*market.Symbol, 0, len(infos))
	feeds := make([]replay.Feed, 0, len(infos))
	for i, info := range infos {
		sym, err := market.NewSymbol(info)
		if err != nil {
			return nil, nil, err
		}
		sc := cfg.Symbols[i]
		bars, ok := given[info.Name]
		if !ok {
			if bars, err = loadBars(sc, log); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", info.Name, err)
			}
		}

		tf := replay.InferTimeframe(bars)
		if sc.Timeframe != "" {
			if tf, err = market.ParseTimeframe(sc.Timeframe); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", info.Name, err)
			}
			bars = replay.Resample(bars, tf, 1)
		}
		logGaps(log.WithField("symbol", info.Name), bars, tf)

		symbols = append(symbols, sym)
		feeds = append(feeds, replay.Feed{Symbol: sym, Bars: bars})
	}
	return symbols, feeds, nil
}

func loadBars(sc config.SymbolConfig, log logrus.FieldLogger) ([]market.Bar, error) {
	if sc.Format != "dukascopy" {
		return replay.LoadBars(sc.Data)
	}
	bars, in, err := replay.LoadDukascopy(sc.Data)
	if err != nil {
		return nil, err
	}
	if in.Duplicates > 0 || in.BadLines > 0 {
		log.WithFields(logrus.Fields{
			"file":       sc.Data,
			"duplicates": in.Duplicates,
			"bad_lines":  in.BadLines,
		}).Warn("ingest warnings")
	}
	return bars, nil
}

func logGaps(log logrus.FieldLogger, bars []market.Bar, tf time.Duration) {
	s := replay.GapReport(bars, tf)
	fields := logrus.Fields{
		"bars":       s.Bars,
		"timeframe":  tf,
		"gaps":       s.Gaps,
		"missing":    s.Missing,
		"weekend":    s.Weekend,
		"suspicious": s.Suspicious,
	}
	if s.Suspicious > 0 {
		log.WithFields(fields).WithField("longest", s.Longest).Warn("history has suspicious gaps")
		return
	}
	log.WithFields(fields).Info("history loaded")
}

// OpenJournal opens the configured journal. It returns nil for "none".
func OpenJournal(cfg config.JournalConfig) (journal.Journal, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "csv":
		j, err := journal.NewCSV(cfg.TradesFile, cfg.EventsFile, cfg.EquityFile)
		if err != nil {
			return nil, err
		}
		return j, nil
	case "sqlite":
		j, err := journal.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return j, nil
	}
	return nil, fmt.Errorf("%w: journal type %q", config.ErrInvalid, cfg.Type)
}

func firstBar(feeds []replay.Feed) time.Time {
	var first time.Time
	for _, f := range feeds {
		if len(f.Bars) > 0 && (first.IsZero() || f.Bars[0].Time.Before(first)) {
			first = f.Bars[0].Time
		}
	}
	return first
}
