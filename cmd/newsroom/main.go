// cmd/newsroom/main.go
//
// Entry point for the newsroom CLI. The first argument selects the run
// mode; with no argument the daemon runs.
//
// Modes:
//   daemon       run the scheduled loops until interrupted
//   cycle        one complete discovery/review/publish pass
//   discovery    one discovery and writing pass
//   review       drain the review queue, publish what gets approved
//   publish      publish already-approved articles
//   research     produce the model benchmark report
//   interactive  open the TUI console
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/yourusername/newsroom/internal/agent"
	"github.com/yourusername/newsroom/internal/article"
	"github.com/yourusername/newsroom/internal/config"
	"github.com/yourusername/newsroom/internal/generative"
	"github.com/yourusername/newsroom/internal/gitops"
	"github.com/yourusername/newsroom/internal/logbook"
	"github.com/yourusername/newsroom/internal/newsroom"
	"github.com/yourusername/newsroom/internal/orchestrator"
	"github.com/yourusername/newsroom/internal/publisher"
	"github.com/yourusername/newsroom/internal/review"
	"github.com/yourusername/newsroom/internal/tui"
)

var validModes = []string{"daemon", "cycle", "discovery", "review", "publish", "research", "interactive"}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	flag.Parse()

	mode := "daemon"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}
	if !isValidMode(mode) {
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", mode)
		fmt.Fprintf(os.Stderr, "valid modes: %v\n", validModes)
		return
	}

	// Secrets live in .env during development; a missing file is fine.
	_ = godotenv.Load()

	if err := run(mode, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "newsroom: %v\n", err)
		os.Exit(1)
	}
}

func isValidMode(mode string) bool {
	for _, m := range validModes {
		if m == mode {
			return true
		}
	}
	return false
}

func run(mode, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	lb, err := logbook.New(filepath.Join(cfg.ContentDir, "logs", "newsroom.log"))
	if err != nil {
		return fmt.Errorf("open logbook: %w", err)
	}

	orch, err := assemble(cfg, lb)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch mode {
	case "daemon":
		return orch.Daemon(ctx)
	case "cycle":
		summary := orch.RunCompleteCycle(ctx)
		fmt.Printf("cycle finished in %s: %d discovered, %d written, %d reviewed, %d published\n",
			summary.Duration, summary.Discovered, summary.Written, summary.Reviewed, summary.Published)
		for _, e := range summary.Errors {
			fmt.Fprintf(os.Stderr, "  error: %s\n", e)
		}
		return nil
	case "discovery":
		discovered, written, errs := orch.RunDiscovery(ctx)
		fmt.Printf("%d leads discovered, %d articles written\n", discovered, written)
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  error: %s\n", e)
		}
		return nil
	case "review":
		reviewed, approved, errs := orch.RunReviewCycle(ctx)
		fmt.Printf("%d articles reviewed, %d approved\n", reviewed, approved)
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  error: %s\n", e)
		}
		locations, err := orch.RunPublish(ctx)
		fmt.Printf("%d articles published\n", len(locations))
		return err
	case "publish":
		locations, err := orch.RunPublish(ctx)
		for _, loc := range locations {
			fmt.Println(loc)
		}
		return err
	case "research":
		return orch.RunResearch(ctx, nil)
	case "interactive":
		return tui.Run(orch)
	}
	return nil
}

// assemble wires the agents, queues, and stores from configuration.
func assemble(cfg config.Config, lb *logbook.Logbook) (*orchestrator.Orchestrator, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%s is not set", cfg.Generative.APIKeyEnv)
	}
	genOpts := []generative.HTTPOption{}
	if cfg.Generative.Model != "" {
		genOpts = append(genOpts, generative.WithModel(cfg.Generative.Model))
	}
	if cfg.Generative.Endpoint != "" {
		genOpts = append(genOpts, generative.WithEndpoint(cfg.Generative.Endpoint))
	}
	gen, err := generative.NewHTTPClient(apiKey, genOpts...)
	if err != nil {
		return nil, err
	}

	// Audit events go to the shared logbook.
	audit := agent.SinkFunc(func(e agent.Event) {
		lb.With("audit").Info("%s", e.String())
	})

	editor := agent.NewEditor(gen, audit, agent.WithThresholds(review.Thresholds{
		Approve: cfg.QualityThreshold,
		Revise:  cfg.QualityThreshold - 1.0,
	}))

	store, err := publisher.NewContentStore(cfg.ContentDir)
	if err != nil {
		return nil, err
	}

	manager := newsroom.New(editor, store,
		newsroom.WithLogbook(lb),
		newsroom.WithResearchExpert(agent.NewResearchExpert(gen, audit)))
	for _, rc := range cfg.EnabledReporters() {
		reporter := agent.NewReporter(rc.ID, article.Category(rc.Category), rc.Sources, gen, audit)
		if err := manager.RegisterReporter(rc.ID, reporter); err != nil {
			return nil, err
		}
	}

	opts := []orchestrator.Option{orchestrator.WithLogbook(lb)}
	if cfg.GitEnabled {
		repo, err := gitops.Open(cfg.ContentDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithGitRepo(repo))
	}
	return orchestrator.New(manager, cfg, opts...), nil
}
