package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"marks/config"
	"marks/internal/adapter/bookmarkfs"
	"marks/internal/adapter/embedding"
	"marks/internal/adapter/llm"
	"marks/internal/adapter/store"
	"marks/internal/adapter/webpage"
	"marks/internal/port"
	"marks/internal/usecase"
)

var (
	cfgFile        string
	cfg            *config.Config
	collectionPath string
	useMockBackend bool
)

var rootCmd = &cobra.Command{
	Use:   "marks",
	Short: "Bookmark intelligence - semantic search, duplicates, and categorization",
	Long: `marks manages a personal bookmark collection stored as JSON/CSV files:
semantic search over titles, descriptions, and tags; duplicate detection;
category suggestions; clustering-based category discovery; and LLM
enrichment, all against a local Ollama backend.

Example usage:
  marks search "3d printing"        # Semantic search
  marks duplicates                  # Find duplicate bookmarks
  marks discover                    # Propose new categories by clustering
  marks enrich --limit 10           # Fill in missing descriptions/tags`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(".")
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if url := os.Getenv("OLLAMA_URL"); url != "" {
			cfg.Models.OllamaURL = url
		}
		return cfg.Validate()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./marks.yaml)")
	rootCmd.PersistentFlags().StringVarP(&collectionPath, "collection", "C", ".", "bookmark collection file or directory")
	rootCmd.PersistentFlags().BoolVar(&useMockBackend, "mock-backend", false, "use deterministic offline backends (for testing)")
}

// app bundles the wired-up services a command needs.
type app struct {
	cfg         *config.Config
	loader      *bookmarkfs.Loader
	service     *usecase.SimilarityService
	detector    *usecase.DuplicateDetector
	categorizer *usecase.Categorizer
	embedder    port.Embedder
	generator   port.Generator
	fetcher     *webpage.Fetcher
	cache       *store.BoltVectorCache
	path        string
}

// newApp builds the service stack and, when load is true, reads the
// collection from the configured path.
func newApp(load bool) (*app, error) {
	loader := bookmarkfs.NewLoader(cfg.Output.Includes, cfg.Output.Excludes)

	var base port.Embedder
	var generator port.Generator
	if useMockBackend {
		base = embedding.NewMockEmbedder(64)
		generator = &llm.MockGenerator{Responses: []string{`{"name":"Untitled","description":""}`}}
	} else {
		base = embedding.NewOllamaEmbedder(cfg.Models.OllamaURL, cfg.Models.Embedding)
		generator = llm.NewOllamaGenerator(cfg.Models.OllamaURL, cfg.Models.LLM)
	}

	var cache *store.BoltVectorCache
	embedder := port.Embedder(base)
	if cfg.Output.CachePath != "" {
		var err error
		cache, err = store.NewBoltVectorCache(cfg.Output.CachePath, base)
		if err != nil {
			return nil, fmt.Errorf("failed to open vector cache: %w", err)
		}
		embedder = cache
	}
	safe := embedding.NewSafeEmbedder(embedder)

	index := store.NewMemoryVectorIndex(safe)
	service := usecase.NewSimilarityService(index)
	detector := usecase.NewDuplicateDetector(service, cfg.Processing.SimilarityCutoff)
	categorizer := usecase.NewCategorizer(service, loader)
	fetcher := webpage.NewFetcher(time.Duration(cfg.Processing.FetchTimeout) * time.Second)

	a := &app{
		cfg:         cfg,
		loader:      loader,
		service:     service,
		detector:    detector,
		categorizer: categorizer,
		embedder:    safe,
		generator:   generator,
		fetcher:     fetcher,
		cache:       cache,
		path:        collectionPath,
	}

	if load {
		bookmarks, err := loader.Load(collectionPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookmarks: %w", err)
		}
		service.SetBookmarks(bookmarks)
		fmt.Printf("Loaded %d bookmarks from %s\n", len(bookmarks), collectionPath)
	}

	return a, nil
}

// close releases the vector cache, if one is open.
func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// baseDir is the directory category files live in: the collection path
// itself, or its parent when the collection is a single file.
func (a *app) baseDir() string {
	info, err := os.Stat(a.path)
	if err == nil && info.IsDir() {
		return a.path
	}
	return filepath.Dir(a.path)
}

// backupCollection copies the collection aside before a destructive
// save, when backups are configured.
func (a *app) backupCollection() {
	if a.cfg.Output.BackupDir == "" {
		return
	}
	mgr, err := bookmarkfs.NewBackupManager(a.cfg.Output.BackupDir, a.cfg.Output.KeepBackups)
	if err != nil {
		fmt.Printf("Warning: backups unavailable: %v\n", err)
		return
	}
	info, err := os.Stat(a.path)
	if err != nil {
		return
	}
	if info.IsDir() {
		if _, err := mgr.BackupDirectory(a.path, a.loader); err != nil {
			fmt.Printf("Warning: directory backup failed: %v\n", err)
		}
		return
	}
	if _, err := mgr.Backup(a.path); err != nil {
		fmt.Printf("Warning: backup failed: %v\n", err)
	}
}
