// Package main is the kensaku CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/kensaku-io/kensaku/internal/config"
	"github.com/kensaku-io/kensaku/internal/embedding"
	"github.com/kensaku-io/kensaku/internal/extract"
	"github.com/kensaku-io/kensaku/internal/ingest"
	"github.com/kensaku-io/kensaku/internal/models"
	"github.com/kensaku-io/kensaku/internal/persist"
	"github.com/kensaku-io/kensaku/internal/store"
	"github.com/kensaku-io/kensaku/internal/watcher"
	"github.com/kensaku-io/kensaku/pkg/utils"
)

var version = "dev"

// loadConfig loads config from path, falling back to config.yaml in the
// current directory when path is the default and no file exists there.
// A missing default config is not an error; built-in defaults apply.
func loadConfig(path string) (*config.Config, error) {
	defaultPath := filepath.Join(config.DefaultDataDir(""), "config.yaml")
	if path == "" {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				return config.Load(fallback)
			}
		}
		if _, err := os.Stat(defaultPath); err == nil {
			return config.Load(defaultPath)
		}
		var cfg config.Config
		config.ApplyDefaults(&cfg)
		return &cfg, nil
	}
	return config.Load(path)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "add":
		runAdd()
	case "search":
		runSearch()
	case "ingest":
		runIngest()
	case "delete":
		runDelete()
	case "reset":
		runReset()
	case "status":
		runStatus()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("kensaku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`kensaku - embedded hybrid (vector + BM25) document search

Usage:
  kensaku add -text TEXT [-id ID] [-meta k=v,...]   add a document
  kensaku search -q QUERY [-n N] [-threshold T] [-filter k=v,...]
  kensaku ingest PATH [PATH...]                     ingest files (chunked)
  kensaku delete [-id ID,...] [-filter k=v,...]     delete documents
  kensaku reset                                     remove all documents
  kensaku status                                    show store info
  kensaku watch                                     watch configured directories
  kensaku version

Common flags:
  -config PATH   config file (default: ./config.yaml if present)
  -debug         verbose logging
`)
}

// env bundles what every command needs: the opened store, the ingester, the
// app config, and a logger.
type env struct {
	cfg      *config.Config
	store    *store.Store
	embedder embedding.Embedder
	ingester *ingest.Ingester
	logger   *zap.Logger
}

func (e *env) close() {
	_ = e.store.Close()
	_ = e.logger.Sync()
}

func openEnv(ctx context.Context, configPath string, debug bool) (*env, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := utils.NewLogger(debug || cfg.Debug)
	if err != nil {
		return nil, err
	}

	var adapter persist.Adapter
	switch cfg.Store.Backend {
	case "sqlite":
		adapter, err = persist.NewSQLiteAdapter(filepath.Join(cfg.Store.DataDir, "documents.db"))
	case "file":
		adapter, err = persist.NewFileAdapter(cfg.Store.DataDir)
	default:
		err = fmt.Errorf("unknown storage backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	storeCfg := store.DefaultConfig(cfg.Store.Name, cfg.Store.Dimension)
	storeCfg.DefaultNumResults = cfg.Store.DefaultNumResults
	storeCfg.MinThreshold = cfg.Store.MinThreshold
	if cfg.Store.HybridWeight != nil {
		storeCfg.HybridWeight = *cfg.Store.HybridWeight
	}
	if cfg.Store.K1 != nil {
		storeCfg.K1 = *cfg.Store.K1
	}
	if cfg.Store.B != nil {
		storeCfg.B = *cfg.Store.B
	}

	s, err := store.Open(ctx, storeCfg, adapter, store.WithLogger(logger))
	if err != nil {
		var loadErr *models.LoadError
		if !errors.As(err, &loadErr) {
			return nil, err
		}
		// Partial load: keep going with what did load.
		fmt.Fprintf(os.Stderr, "warning: %v\n", loadErr)
	}

	embedder := embedding.NewHashEmbedder(cfg.Store.Dimension)
	ingester := ingest.NewIngester(s, embedder, extract.NewExtractor(),
		cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, ingest.WithLogger(logger))
	return &env{cfg: cfg, store: s, embedder: embedder, ingester: ingester, logger: logger}, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// parsePairs parses "k=v,k2=v2" into a map. Empty input yields nil.
func parsePairs(s string) (map[string]string, error) {
	if s == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, models.Invalidf("malformed key=value pair %q", pair)
		}
		out[k] = v
	}
	return out, nil
}

func runAdd() {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	text := fs.String("text", "", "document text (required)")
	id := fs.String("id", "", "document ID (generated when empty)")
	meta := fs.String("meta", "", "metadata as k=v,k2=v2")
	_ = fs.Parse(os.Args[2:])

	if *text == "" {
		fatal(models.Invalidf("-text is required"))
	}
	ctx := context.Background()
	e, err := openEnv(ctx, *configPath, *debug)
	if err != nil {
		fatal(err)
	}
	defer e.close()

	metadata, err := parsePairs(*meta)
	if err != nil {
		fatal(err)
	}
	emb, err := e.embedder.Embed(ctx, *text)
	if err != nil {
		fatal(err)
	}
	var ids, metas = []string{*id}, []map[string]string{metadata}
	if *id == "" {
		ids = nil
	}
	if metadata == nil {
		metas = nil
	}
	out, err := e.store.AddBatch(ctx, []string{*text}, [][]float32{emb}, ids, metas)
	if err != nil {
		fatal(err)
	}
	fmt.Println(out[0])
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	query := fs.String("q", "", "query text (required)")
	n := fs.Int("n", 0, "number of results (0 = store default)")
	threshold := fs.Float64("threshold", -2, "minimum cosine similarity (-2 = store default)")
	filter := fs.String("filter", "", "metadata filter as k=v,k2=v2")
	_ = fs.Parse(os.Args[2:])

	if *query == "" {
		fatal(models.Invalidf("-q is required"))
	}
	ctx := context.Background()
	e, err := openEnv(ctx, *configPath, *debug)
	if err != nil {
		fatal(err)
	}
	defer e.close()

	filterMap, err := parsePairs(*filter)
	if err != nil {
		fatal(err)
	}
	opts := &store.SearchOptions{NumResults: *n, Filter: filterMap}
	if *threshold >= -1 {
		opts.Threshold = threshold
	}
	emb, err := e.embedder.Embed(ctx, *query)
	if err != nil {
		fatal(err)
	}
	results, err := e.store.SearchWithText(ctx, *query, emb, opts)
	if err != nil {
		fatal(err)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return
	}
	for i, r := range results {
		fmt.Printf("%2d. [%.4f] %s  %s\n", i+1, r.Score, r.ID, utils.Truncate(r.Text, 80))
	}
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	paths := fs.Args()
	if len(paths) == 0 {
		fatal(models.Invalidf("at least one path is required"))
	}
	ctx := context.Background()
	e, err := openEnv(ctx, *configPath, *debug)
	if err != nil {
		fatal(err)
	}
	defer e.close()

	for _, path := range paths {
		fileID, ids, err := e.ingester.IngestFile(ctx, path)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("%s: %d chunk(s), fileID %s\n", path, len(ids), fileID)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	ids := fs.String("id", "", "comma-separated document IDs")
	filter := fs.String("filter", "", "metadata filter as k=v,k2=v2")
	_ = fs.Parse(os.Args[2:])

	if *ids == "" && *filter == "" {
		fatal(models.Invalidf("either -id or -filter is required"))
	}
	ctx := context.Background()
	e, err := openEnv(ctx, *configPath, *debug)
	if err != nil {
		fatal(err)
	}
	defer e.close()

	if *ids != "" {
		if err := e.store.Delete(ctx, strings.Split(*ids, ",")); err != nil {
			fatal(err)
		}
	}
	if *filter != "" {
		filterMap, err := parsePairs(*filter)
		if err != nil {
			fatal(err)
		}
		if err := e.store.DeleteByFilter(ctx, filterMap); err != nil {
			fatal(err)
		}
	}
	fmt.Println("Deleted.")
}

func runReset() {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	yes := fs.Bool("yes", false, "skip confirmation")
	_ = fs.Parse(os.Args[2:])

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath, *debug)
	if err != nil {
		fatal(err)
	}
	defer e.close()

	if !*yes {
		fmt.Printf("Remove all %d document(s)? [y/N] ", e.store.Count())
		var answer string
		_, _ = fmt.Scanln(&answer)
		if !strings.EqualFold(answer, "y") {
			fmt.Println("Aborted.")
			return
		}
	}
	if err := e.store.Reset(ctx); err != nil {
		fatal(err)
	}
	fmt.Println("Store reset.")
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	ctx := context.Background()
	e, err := openEnv(ctx, *configPath, *debug)
	if err != nil {
		fatal(err)
	}
	defer e.close()

	cfg := e.store.Config()
	fmt.Printf("Store:        %s\n", cfg.Name)
	fmt.Printf("Backend:      %s (%s)\n", e.cfg.Store.Backend, e.cfg.Store.DataDir)
	fmt.Printf("Dimension:    %d\n", cfg.Dimension)
	fmt.Printf("HybridWeight: %g\n", cfg.HybridWeight)
	fmt.Printf("Documents:    %d\n", e.store.Count())
}

func runWatch() {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e, err := openEnv(ctx, *configPath, *debug)
	if err != nil {
		fatal(err)
	}
	defer e.close()

	if len(e.cfg.Watch.Directories) == 0 {
		fatal(models.Invalidf("no watch directories configured"))
	}
	w := watcher.New(
		e.cfg.Watch.Directories,
		e.cfg.Watch.Extensions,
		e.cfg.Watch.RecursiveOrDefault(),
		func(path string) {
			if _, _, err := e.ingester.IngestFile(ctx, path); err != nil {
				e.logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
			}
		},
		func(path string) {
			if err := e.ingester.RemoveFile(ctx, path); err != nil {
				e.logger.Warn("remove failed", zap.String("path", path), zap.Error(err))
			}
		},
		watcher.WithLogger(e.logger),
	)
	if err := w.Start(ctx); err != nil {
		fatal(err)
	}
	defer w.Stop()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", strings.Join(e.cfg.Watch.Directories, ", "))
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
