package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jobradar/jobradar/internal/api"
	"github.com/jobradar/jobradar/internal/config"
	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/embed"
	"github.com/jobradar/jobradar/internal/extraction"
	"github.com/jobradar/jobradar/internal/ollama"
	"github.com/jobradar/jobradar/internal/profile"
	"github.com/jobradar/jobradar/internal/recommend"
	"github.com/jobradar/jobradar/internal/storage"
	"github.com/jobradar/jobradar/internal/taxonomy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jobradar server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running jobradar server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show jobradar system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "jobradar.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// app wires the corpus, extractor, embedding index, and ranking engine
// together and lets the HTTP layer swap them atomically on corpus reload.
type app struct {
	store     *storage.Store
	extractor *extraction.Extractor
	embedder  embed.TextEmbedder // nil when semantic features are degraded
	vectors   *embed.Store
	model     string
	weights   recommend.Weights
	options   recommend.Options
	corpus    config.CorpusConfig
	logger    *slog.Logger

	mu     sync.RWMutex
	engine *recommend.Engine
}

func (a *app) currentEngine() *recommend.Engine {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.engine
}

// fillOptions backfills unset ranking options from the configured
// defaults. An explicit MinSkillMatch of zero is passed through.
func (a *app) fillOptions(opts recommend.Options) recommend.Options {
	if opts.TopK <= 0 {
		opts.TopK = a.options.TopK
	}
	if opts.MinSkillMatch == nil {
		opts.MinSkillMatch = a.options.MinSkillMatch
	}
	return opts
}

func (a *app) Rank(ctx context.Context, cand profile.Candidate, opts recommend.Options) ([]recommend.Recommendation, error) {
	return a.currentEngine().Rank(ctx, cand, a.fillOptions(opts))
}

func (a *app) RankBatch(ctx context.Context, candidates []profile.Candidate, opts recommend.Options) ([]recommend.Recommendation, error) {
	return a.currentEngine().RankBatch(ctx, candidates, a.fillOptions(opts))
}

func (a *app) Details(jobID string) (corpus.Job, error) {
	return a.currentEngine().Details(jobID)
}

func (a *app) SemanticAvailable() bool {
	return a.currentEngine().SemanticAvailable()
}

// ReloadCorpus re-reads the corpus source, persists it, reruns skill
// extraction, rebuilds the embedding index, and swaps in a fresh engine.
func (a *app) ReloadCorpus(ctx context.Context) (int, error) {
	c, err := a.loadCorpus()
	if err != nil {
		return 0, err
	}

	if err := a.store.ReplaceJobs(c); err != nil {
		return 0, fmt.Errorf("saving jobs: %w", err)
	}

	if err := a.runExtraction(ctx, c); err != nil {
		return 0, err
	}

	idx, err := a.buildIndex(ctx, c)
	if err != nil {
		return 0, err
	}

	engine, err := recommend.NewEngine(c, idx, a.embedder, a.weights, a.logger)
	if err != nil {
		return 0, err
	}

	a.mu.Lock()
	a.engine = engine
	a.mu.Unlock()

	a.logger.Info("corpus reloaded", "jobs", c.Len(), "semantic", engine.SemanticAvailable())
	return c.Len(), nil
}

// loadCorpus reads the CSV source, falling back to previously persisted
// jobs when the source file is absent.
func (a *app) loadCorpus() (*corpus.Corpus, error) {
	c, err := corpus.LoadCSV(a.corpus.Path)
	if errors.Is(err, corpus.ErrSourceAbsent) {
		a.logger.Warn("corpus source not found, using persisted jobs", "path", a.corpus.Path)
		stored, storeErr := a.store.LoadCorpus()
		if storeErr != nil {
			return nil, fmt.Errorf("loading persisted jobs: %w", storeErr)
		}
		if stored.Len() == 0 {
			return nil, fmt.Errorf("no corpus available: %w", err)
		}
		return stored, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (a *app) runExtraction(ctx context.Context, c *corpus.Corpus) error {
	result, err := a.extractor.ExtractAll(ctx, c)
	if err != nil {
		return fmt.Errorf("extracting skills: %w", err)
	}
	if err := a.store.ReplaceOccurrences(result.RunID, result.Occurrences); err != nil {
		return fmt.Errorf("saving skill occurrences: %w", err)
	}
	return nil
}

// buildIndex returns the embedding index for the corpus, reusing
// persisted vectors when they still cover every job. Returns nil when
// semantic features are degraded.
func (a *app) buildIndex(ctx context.Context, c *corpus.Corpus) (*embed.Index, error) {
	if a.embedder == nil {
		return nil, nil
	}

	idx, err := a.vectors.LoadIndex(a.model)
	if err != nil {
		a.logger.Warn("could not load persisted vectors, re-embedding", "error", err)
	} else if idx != nil && idx.Covers(c) {
		a.logger.Info("reusing persisted embedding index", "jobs", idx.Len(), "model", a.model)
		return idx, nil
	}

	a.logger.Info("embedding corpus", "jobs", c.Len(), "model", a.model)
	idx, err = embed.Build(ctx, embed.NewBatcher(a.embedder), c)
	if err != nil {
		if errors.Is(err, embed.ErrUnavailable) {
			a.logger.Warn("embedding unavailable, continuing without semantic scoring")
			return nil, nil
		}
		return nil, fmt.Errorf("building embedding index: %w", err)
	}

	if err := a.vectors.SaveIndex(a.model, idx); err != nil {
		a.logger.Warn("could not persist embedding index", "error", err)
	} else if n, err := a.vectors.Count(a.model); err == nil {
		a.logger.Info("persisted embedding index", "vectors", n, "model", a.model)
	}
	return idx, nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "jobradar version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	apiToken, err := config.EnsureAPIToken(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("jobradar is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("jobradar is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Check Ollama readiness. An unreachable Ollama degrades semantic
	// features instead of refusing to start: extraction and ranking fall
	// back to regex and skill matching.
	var embedder embed.TextEmbedder
	ollamaClient := ollama.New(cfg.Ollama.BaseURL)
	if err := ollama.EnsureReady(ctx, ollamaClient, cfg.Ollama.EmbedModel, os.Stderr); err != nil {
		slog.Warn("semantic features unavailable", "error", err)
	} else {
		embedder = ollama.NewEmbedder(ollamaClient, cfg.Ollama.EmbedModel)
	}

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Built-in skill catalog unless the config points at a custom one.
	catalog := taxonomy.Builtin()
	if cfg.Extraction.CatalogPath != "" {
		catalog, err = taxonomy.LoadFile(cfg.Extraction.CatalogPath)
		if err != nil {
			return fmt.Errorf("loading skill catalog: %w", err)
		}
		slog.Info("using custom skill catalog", "path", cfg.Extraction.CatalogPath, "skills", catalog.Len())
	}

	extractor, err := extraction.New(catalog, embedder)
	if err != nil {
		return fmt.Errorf("building extractor: %w", err)
	}
	extractor.SetSemanticThreshold(cfg.Extraction.SemanticThreshold)
	if embedder != nil {
		if err := extractor.Prepare(ctx); err != nil {
			slog.Warn("could not prepare semantic extraction, using regex only", "error", err)
			embedder = nil
		}
	}

	a := &app{
		store:     store,
		extractor: extractor,
		embedder:  embedder,
		vectors:   embed.NewStore(store.DB()),
		model:     cfg.Ollama.EmbedModel,
		weights: recommend.Weights{
			Skill:    cfg.Scoring.SkillWeight,
			Semantic: cfg.Scoring.SemanticWeight,
		},
		options: recommend.Options{
			TopK:          cfg.Scoring.TopK,
			MinSkillMatch: &cfg.Scoring.MinSkillMatch,
		},
		corpus: cfg.Corpus,
		logger: logger,
	}

	// Initial corpus load, extraction pass, and index build.
	if _, err := a.ReloadCorpus(ctx); err != nil {
		return err
	}

	appHandler := api.NewAppHandler(api.AppDeps{
		Store:       store,
		Extractor:   extractor,
		Recommender: a,
		Reloader:    a,
		Token:       apiToken,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: appHandler,
	}

	// Build and start MCP server (stdio transport in a goroutine).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store:       store,
		Extractor:   extractor,
		Recommender: a,
	})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "jobradar listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("jobradar is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop jobradar (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to jobradar (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	// Check server health.
	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	// Check Ollama.
	ollamaResp, err := client.Get(cfg.Ollama.BaseURL + "/api/version")
	if err != nil {
		printStatus("Ollama", "not running")
	} else {
		ollamaResp.Body.Close()
		printStatus("Ollama", "running at %s", cfg.Ollama.BaseURL)
	}

	printStatus("Embed model", "%s", cfg.Ollama.EmbedModel)

	// Show corpus counts if server is running.
	apiToken, tokenErr := config.GetAPIToken(cfg.Storage.DataDir)
	if tokenErr == nil && resp != nil && resp.StatusCode == 200 {
		statsResp, err := apiGet(client, serverURL+"/stats", apiToken)
		if err == nil {
			var stats struct {
				Jobs        int    `json:"jobs"`
				Occurrences int    `json:"occurrences"`
				Vectors     int    `json:"vectors"`
				LastRunID   string `json:"last_run_id"`
			}
			if json.NewDecoder(statsResp.Body).Decode(&stats) == nil {
				printStatus("Jobs", "%d", stats.Jobs)
				printStatus("Skill occurrences", "%d", stats.Occurrences)
				printStatus("Vectors", "%d", stats.Vectors)
				if stats.LastRunID != "" {
					printStatus("Last extraction run", "%s", stats.LastRunID)
				}
			}
			statsResp.Body.Close()
		}
	}

	printStatus("Corpus path", "%s", cfg.Corpus.Path)
	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func apiGet(client *http.Client, url, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return client.Do(req)
}
