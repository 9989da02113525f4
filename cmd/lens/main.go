// Command lens serves the natural-language business intelligence API.
//
// Usage:
//
//	lens serve --config config.yaml
//	lens validate --config config.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/getlens/lens/pkg/analyzer"
	"github.com/getlens/lens/pkg/cache"
	"github.com/getlens/lens/pkg/config"
	"github.com/getlens/lens/pkg/gateway"
	"github.com/getlens/lens/pkg/insights"
	"github.com/getlens/lens/pkg/llms"
	"github.com/getlens/lens/pkg/logger"
	"github.com/getlens/lens/pkg/metadata"
	"github.com/getlens/lens/pkg/observability"
	"github.com/getlens/lens/pkg/pipeline"
	"github.com/getlens/lens/pkg/retriever"
	"github.com/getlens/lens/pkg/server"
	"github.com/getlens/lens/pkg/viz"
	"github.com/getlens/lens/pkg/warehouse"
)

// CLI defines the command-line interface.
type CLI struct {
	Version  VersionCmd  `cmd:"" help:"Show version information."`
	Serve    ServeCmd    `cmd:"" help:"Start the HTTP server."`
	Validate ValidateCmd `cmd:"" help:"Validate configuration file."`

	Config    string `short:"c" help:"Path to config file." type:"path"`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"info"`
	LogFormat string `help:"Log format (simple or verbose)." default:"simple"`
}

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	version := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			version = info.Main.Version
		}
	}
	fmt.Printf("lens version %s\n", version)
	return nil
}

// ValidateCmd loads and validates the configuration, then exits.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}

	fmt.Println("configuration OK")
	fmt.Printf("  server:    %s\n", cfg.Server.Address())
	fmt.Printf("  llm:       enabled=%v model=%s\n", cfg.LLM.Enabled(), cfg.LLM.Model)
	fmt.Printf("  cache:     enabled=%v\n", cfg.Cache.Enabled())
	fmt.Printf("  warehouse: enabled=%v\n", cfg.Warehouse.Enabled())
	fmt.Printf("  metadata:  enabled=%v\n", cfg.Metadata.Enabled())
	return nil
}

// ServeCmd starts the HTTP server.
type ServeCmd struct{}

func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.GetLogger()

	metrics, err := observability.InitMetrics(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	responseCache, err := cache.New(cfg.Cache, cache.WithRecorder(metrics))
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer responseCache.Close()

	var llmGateway *gateway.Gateway
	if cfg.LLM.Enabled() {
		provider := llms.NewOpenAIProvider(
			cfg.LLM.Model,
			cfg.LLM.APIKey,
			cfg.LLM.BaseURL,
			time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
			cfg.LLM.MaxRetries,
		)
		llmGateway = gateway.New(provider, cfg.LLM, gateway.WithRecorder(metrics))
	} else {
		log.Warn("LLM_API_KEY not set, running on fallback analysis only")
	}

	var store *warehouse.Store
	if cfg.Warehouse.Enabled() {
		store, err = warehouse.New(ctx, cfg.Warehouse)
		if err != nil {
			return fmt.Errorf("failed to connect to warehouse: %w", err)
		}
		defer store.Close()
	} else {
		log.Warn("WAREHOUSE_URL not set, data contexts will be empty")
	}

	var repo *metadata.Repository
	if cfg.Metadata.Enabled() {
		repo, err = metadata.New(cfg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to connect to metadata store: %w", err)
		}
		defer repo.Close()
	} else {
		log.Warn("METADATA_DB_URL not set, questions stay in memory")
	}

	intentAnalyzer := analyzer.New(classifierOrNil(llmGateway), responseCache)
	contextRetriever := retriever.New(
		warehouseOrEmpty(store),
		cfg.Pipeline.SalesWindowDays,
		cfg.Pipeline.CustomerSampleSize,
	)
	insightEngine := insights.New(generatorOrNil(llmGateway))
	chartBuilder := viz.NewBuilder()

	var pipeOpts []pipeline.Option
	if llmGateway != nil {
		pipeOpts = append(pipeOpts, pipeline.WithCostReporter(llmGateway))
	}
	pipe := pipeline.New(responseCache, repoOrNil(repo), intentAnalyzer, contextRetriever,
		insightEngine, chartBuilder, pipeline.Config{
			RequestTimeout:  time.Duration(cfg.Pipeline.RequestTimeoutSeconds) * time.Second,
			MetadataTimeout: time.Duration(cfg.Metadata.TimeoutSeconds) * time.Second,
		}, pipeOpts...)

	srv := server.New(cfg.Server, pipe, readerOrNil(repo), responseCache, llmGateway, metrics)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "error", err)
		}
		cancel()
	}()

	return srv.Start()
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("lens"),
		kong.Description("Natural-language business intelligence service"),
		kong.UsageOnError(),
	)

	logger.Init(logger.ParseLevel(cli.LogLevel), os.Stderr, cli.LogFormat)

	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}
