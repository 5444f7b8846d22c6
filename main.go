package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"namesearch/internal/config"
	"namesearch/internal/domain"
	"namesearch/internal/eventbus"
	"namesearch/internal/logger"
	"namesearch/internal/metrics"
	"namesearch/internal/search"
	"namesearch/internal/ui"
)

var version = "dev"

type options struct {
	configPath  string
	metricsAddr string
	logLevel    string
	initConfig  bool
}

func main() {
	var opts options
	var showVersion bool

	// Parse command line arguments
	flag.StringVar(&opts.configPath, "config", "", "Path to the config file (default "+config.DefaultPath()+")")
	flag.StringVar(&opts.configPath, "c", "", "Path to the config file (shorthand)")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flag.BoolVar(&opts.initConfig, "init-config", false, "Write the effective config file and exit")
	flag.BoolVar(&showVersion, "version", false, "Print the version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("namesearch %s\n", version)
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// The config decides where logs go, so it loads before anything can log
	cfg, err := config.NewConfigService(opts.configPath, nil).Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}

	log, err := logger.NewLogger(cfg.Logging.File, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	bus := eventbus.New(log)
	defer bus.Close()
	logLifecycle(bus, log)

	configSvc := config.NewConfigService(opts.configPath, bus)
	if opts.initConfig {
		if err := configSvc.Save(cfg); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", configSvc.Path())
		return nil
	}

	catalog := cfg.BuildCatalog()
	bus.Publish(domain.ConfigLoadedEvent{Path: configSvc.Path(), CatalogSize: catalog.Len()})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pipeline := search.New(catalog, search.Options{
		Debounce: cfg.Search.Debounce.Duration,
		Latency:  cfg.Search.Latency.Duration,
		Grace:    cfg.Search.Grace.Duration,
		Bus:      bus,
		Logger:   log,
		Metrics:  metrics.NewPipeline(reg),
	})
	defer pipeline.Close()

	model := ui.NewModel(pipeline, cfg.Search, log)
	prog := tea.NewProgram(model, tea.WithAltScreen())
	model.SetProgram(prog)

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	// Only the newest snapshot matters; the mailbox keeps at most one
	mailbox := make(chan domain.SearchSnapshot, 1)
	detach := pipeline.Observe(func(s domain.SearchSnapshot) {
		for {
			select {
			case mailbox <- s:
				return
			default:
				select {
				case <-mailbox:
				default:
				}
			}
		}
	})
	defer detach()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		for {
			select {
			case s := <-mailbox:
				prog.Send(ui.SnapshotMsg{Snapshot: s})
			case <-gctx.Done():
				return nil
			}
		}
	})

	if cfg.Metrics.Addr != "" {
		g.Go(func() error {
			return metrics.Serve(gctx, cfg.Metrics.Addr, reg, log)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		prog.Quit()
		return nil
	})

	g.Go(func() error {
		defer cancel()
		log.Info("starting UI", zap.Int("catalog", catalog.Len()), zap.String("config", configSvc.Path()))
		if os.Getenv("NAMESEARCH_E2E_TEST") == "1" {
			fmt.Println("__READY__")
		}
		if _, err := prog.Run(); err != nil {
			return fmt.Errorf("run UI: %w", err)
		}
		log.Info("UI exited normally")
		return nil
	})

	return g.Wait()
}

// logLifecycle records the bus events that aren't snapshots
func logLifecycle(bus eventbus.EventBus, log *zap.Logger) {
	log = log.Named("events")
	bus.Subscribe(eventbus.EventConfigLoaded, func(e eventbus.DomainEvent) {
		if event, ok := e.(domain.ConfigLoadedEvent); ok {
			log.Info("config loaded", zap.String("path", event.Path), zap.Int("catalog", event.CatalogSize))
		}
	})
	bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		if event, ok := e.(domain.ConfigSavedEvent); ok {
			log.Info("config saved", zap.String("path", event.Path))
		}
	})
	bus.Subscribe(eventbus.EventObserversChanged, func(e eventbus.DomainEvent) {
		if event, ok := e.(domain.ObserversChangedEvent); ok {
			log.Debug("observers changed", zap.Int("count", event.Count))
		}
	})
	bus.Subscribe(eventbus.EventPassSuperseded, func(e eventbus.DomainEvent) {
		if event, ok := e.(domain.PassSupersededEvent); ok {
			log.Debug("pass superseded", zap.String("query", event.Query), zap.Uint64("generation", event.Generation))
		}
	})
}
