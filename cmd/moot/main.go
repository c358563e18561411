// Command moot runs a full courtroom debate: it reads a case
// description, argues it over one to three rounds between the
// prosecution and defense teams, and prints the judge's verdict.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/averros/go-moot/infrastructure/agents"
	"github.com/averros/go-moot/infrastructure/llm"
	"github.com/averros/go-moot/infrastructure/metrics"
	"github.com/averros/go-moot/infrastructure/search"
	"github.com/averros/go-moot/internal/courtroom"
	"github.com/averros/go-moot/internal/domain"
	"github.com/averros/go-moot/internal/ports"
)

const (
	llmTimeout       = 90 * time.Second
	llmRatePerSecond = 1
	llmRateBurst     = 2
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("session failed", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	// Credentials live in the environment; a .env file is a
	// convenience for local runs and its absence is not an error.
	_ = godotenv.Load()

	var (
		configPath  = flag.String("config", "", "path to YAML configuration (built-in defaults when empty)")
		casePath    = flag.String("case", "", "path to the case description file (reads stdin when empty)")
		rounds      = flag.Int("rounds", 0, "override the number of debate rounds (1-3)")
		metricsAddr = flag.String("metrics-addr", "", "listen address for Prometheus metrics (disabled when empty)")
	)
	flag.Parse()

	cfg := courtroom.DefaultConfig()
	if *configPath != "" {
		loaded, err := courtroom.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *rounds != 0 {
		cfg.Rounds = *rounds
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	description, err := readCase(*casePath)
	if err != nil {
		return err
	}

	session, err := buildSession(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})

	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{Addr: *metricsAddr, Handler: mux}
		g.Go(func() error {
			log.Info("metrics server listening", "addr", *metricsAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			select {
			case <-ctx.Done():
			case <-done:
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		defer close(done)

		if err := session.OpenCase(ctx, description); err != nil {
			return err
		}
		transcript, err := session.Run(ctx)
		if err != nil {
			return err
		}
		printTranscript(os.Stdout, transcript)

		verdict, err := session.Deliberate(ctx)
		if err != nil {
			return err
		}
		printVerdict(os.Stdout, verdict)
		return nil
	})

	return g.Wait()
}

// buildSession assembles the search client, the per-role model
// clients, and the agents into a ready courtroom session. A missing
// credential for any configured role halts startup here, before any
// request is made.
func buildSession(cfg courtroom.Config, log *slog.Logger) (*courtroom.Session, error) {
	searchKey := os.Getenv(cfg.Search.APIKeyEnv)
	if searchKey == "" {
		return nil, fmt.Errorf("environment variable %s is not set", cfg.Search.APIKeyEnv)
	}
	searchClient, err := search.NewClient(searchKey)
	if err != nil {
		return nil, fmt.Errorf("build search client: %w", err)
	}

	collector := metrics.NewPrometheusMetrics()

	newLLM := func(mc courtroom.ModelConfig) (*llm.Client, error) {
		key, err := mc.APIKey()
		if err != nil {
			return nil, err
		}
		return llm.NewClient(mc.Provider, llm.ClientConfig{
			APIKey:  key,
			Model:   mc.Model,
			Timeout: llmTimeout,
			Middleware: []llm.Middleware{
				llm.MetricsMiddleware(collector),
				llm.RateLimitMiddleware(rate.Limit(llmRatePerSecond), llmRateBurst),
			},
		})
	}

	newArguing := func(base agents.Config, rc courtroom.RoleConfig) (*agents.Arguing, error) {
		client, err := newLLM(rc.ModelConfig)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", base.Role, err)
		}
		if rc.EvidenceTopic != "" {
			base.EvidenceTopic = rc.EvidenceTopic
		}
		if rc.Temperature != nil {
			base.Temperature = *rc.Temperature
		}
		base.MaxEvidence = cfg.Search.MaxResults
		base.EvidenceDepth = cfg.Search.Depth
		return agents.NewArguing(base, client, searchClient, log)
	}

	pAdvocate, err := newArguing(agents.ProsecutionAdvocateConfig(), cfg.Agents.ProsecutionAdvocate)
	if err != nil {
		return nil, err
	}
	pStrategist, err := newArguing(agents.ProsecutionStrategistConfig(), cfg.Agents.ProsecutionStrategist)
	if err != nil {
		return nil, err
	}
	dAdvocate, err := newArguing(agents.DefenseAdvocateConfig(), cfg.Agents.DefenseAdvocate)
	if err != nil {
		return nil, err
	}
	dStrategist, err := newArguing(agents.DefenseStrategistConfig(), cfg.Agents.DefenseStrategist)
	if err != nil {
		return nil, err
	}

	judgeLLM, err := newLLM(cfg.Agents.Judge)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", domain.RoleJudge, err)
	}
	judgeCfg := agents.DefaultJudgeConfig()
	judgeCfg.VerifyDepth = cfg.Search.Depth
	judge, err := agents.NewJudge(judgeCfg, judgeLLM, searchClient, log)
	if err != nil {
		return nil, err
	}

	var clerk ports.LLMClient
	if cfg.Clerk != nil {
		client, err := newLLM(*cfg.Clerk)
		if err != nil {
			return nil, fmt.Errorf("clerk: %w", err)
		}
		clerk = client
	}

	prosecution := courtroom.Team{Strategist: pStrategist, Advocate: pAdvocate}
	defense := courtroom.Team{Strategist: dStrategist, Advocate: dAdvocate}
	return courtroom.NewSession(cfg.Rounds, prosecution, defense, judge, clerk, log)
}

func readCase(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return "", fmt.Errorf("read case description: %w", err)
	}
	description := strings.TrimSpace(string(data))
	if description == "" {
		return "", errors.New("case description is empty")
	}
	return description, nil
}

func printTranscript(w io.Writer, t courtroom.Transcript) {
	for _, st := range t.Statements {
		fmt.Fprintf(w, "--- Round %d, %s ---\n%s\n\n", st.Round, st.Role, st.Content)
	}
}

func printVerdict(w io.Writer, v *domain.Verdict) {
	fmt.Fprintf(w, "=== VERDICT %s ===\n%s\n\n", v.ID, v.Report)
	fmt.Fprintf(w, "Decision:   %s\n", v.Decision.Marker())
	fmt.Fprintf(w, "Confidence: %d\n", v.Confidence)
	fmt.Fprintf(w, "Consensus:  %s\n", v.Consensus)
}
