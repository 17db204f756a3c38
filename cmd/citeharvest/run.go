package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citeharvest/internal/crawl"
	"github.com/pdiddy/citeharvest/internal/discover"
	"github.com/pdiddy/citeharvest/internal/extract"
	"github.com/pdiddy/citeharvest/internal/fulltext"
	"github.com/pdiddy/citeharvest/internal/sink"
	"github.com/pdiddy/citeharvest/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultDelay     = 3 * time.Second
	defaultUserAgent = "citeharvest/0.1"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Crawl a seed paper's citation graph and harvest species facts",
	Long: `Run loads the seed document (PDF or plain text), then traverses its
citation graph breadth-first up to the configured depth and paper
budget. Each visited paper's text is fetched from the chosen corpus and
passed to the AI extraction backend; the harvested facts land in the
output CSV, stamped with source DOI and citation distance.

When a paper's reference list is empty or inaccessible, discovery falls
back to a title search against the same corpus.`,
	RunE: runHarvest,
}

func init() {
	runCmd.Flags().String("seed", "", "seed document path (PDF or plain text)")
	runCmd.Flags().String("output", "species_data.csv", "output CSV path")
	runCmd.Flags().String("db", "", "optional SQLite database to archive facts in")
	runCmd.Flags().String("manifest", "", "optional YAML run-summary path")
	runCmd.Flags().Int("max-papers", 20, "global paper budget for the crawl")
	runCmd.Flags().Int("max-depth", 2, "maximum citation distance from the seed")
	runCmd.Flags().StringSlice("keywords", nil, "keep only candidates whose title contains one of these (comma-separated)")
	runCmd.Flags().String("corpus", "scopus", "bibliographic corpus: scopus or openalex")
	runCmd.Flags().String("provider", "claude", "AI extraction backend: claude or openai")
	runCmd.Flags().String("model", "", "AI model identifier (backend default if empty)")
	runCmd.Flags().Duration("delay", 0, "pause between processed papers (default 3s)")
	runCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	runCmd.MarkFlagRequired("seed")

	rootCmd.AddCommand(runCmd)
}

// pipelineConfig assembles the full run configuration from flags,
// config file, and loaded secrets.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	maxPapers, _ := cmd.Flags().GetInt("max-papers")
	maxDepth, _ := cmd.Flags().GetInt("max-depth")
	keywords, _ := cmd.Flags().GetStringSlice("keywords")
	corpus, _ := cmd.Flags().GetString("corpus")
	provider, _ := cmd.Flags().GetString("provider")
	model, _ := cmd.Flags().GetString("model")
	delay, _ := cmd.Flags().GetDuration("delay")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	outputPath, _ := cmd.Flags().GetString("output")
	dbPath, _ := cmd.Flags().GetString("db")
	manifestPath, _ := cmd.Flags().GetString("manifest")

	if delay == 0 {
		delay = defaultDelay
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return types.PipelineConfig{
		Crawl: types.CrawlConfig{
			MaxPapers: maxPapers,
			MaxDepth:  maxDepth,
			Keywords:  keywords,
			Delay:     delay,
		},
		Discovery: types.DiscoveryConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: defaultUserAgent,
			},
			Corpus:        types.Corpus(corpus),
			ScopusAPIKey:  secretDefault("scopus-api-key", viper.GetString("scopus_api_key")),
			OpenAlexEmail: secretDefault("openalex-email", viper.GetString("openalex_email")),
		},
		Extraction: types.ExtractionConfig{
			Provider: types.AIProvider(provider),
			Model:    model,
			Timeout:  timeout,
		},
		Sink: types.SinkConfig{
			OutputPath:   outputPath,
			DBPath:       dbPath,
			ManifestPath: manifestPath,
		},
	}
}

func runHarvest(cmd *cobra.Command, args []string) error {
	seedPath, _ := cmd.Flags().GetString("seed")
	cfg := pipelineConfig(cmd)

	client := &http.Client{Timeout: cfg.Discovery.Timeout}

	source, textSource, err := buildCorpus(cfg.Discovery, client)
	if err != nil {
		return err
	}

	backend, err := buildBackend(cfg.Extraction)
	if err != nil {
		return err
	}

	seed, err := fulltext.LoadSeed(seedPath)
	if err != nil {
		return fmt.Errorf("loading seed document: %w", err)
	}
	fmt.Printf("seed: %s (%s)\n", seed.Title, seed.ID)

	crawler := crawl.New(textSource, backend, []crawl.Strategy{
		discover.ReferenceStrategy{Source: source},
		discover.TitleSearchStrategy{Source: source, Limit: cfg.Discovery.SearchLimit},
	}, cfg.Crawl, os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startedAt := time.Now().UTC()
	res, runErr := crawler.Run(ctx, types.DocumentRef{ID: seed.ID, Title: seed.Title}, seed.Text)
	if res == nil {
		return runErr
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "warning: %v; writing partial results\n", runErr)
	}

	if err := writeResults(cmd, res, seed, cfg.Sink, startedAt); err != nil {
		return err
	}

	printSummary(res, cfg.Sink.OutputPath)
	return runErr
}

// buildCorpus constructs the discovery source and text source for the
// selected bibliographic corpus.
func buildCorpus(cfg types.DiscoveryConfig, client *http.Client) (discover.Source, crawl.TextSource, error) {
	switch cfg.Corpus {
	case types.CorpusScopus:
		if cfg.ScopusAPIKey == "" {
			return nil, nil, fmt.Errorf("scopus corpus requires an API key (.secrets/scopus-api-key or CITEHARVEST_SCOPUS_API_KEY)")
		}
		src := &discover.ScopusSource{
			Client:       client,
			APIKey:       cfg.ScopusAPIKey,
			UserAgent:    cfg.UserAgent,
			RefsPerPaper: cfg.RefsPerPaper,
		}
		return src, fulltext.NewScopusSource(client, cfg.ScopusAPIKey, cfg.UserAgent), nil

	case types.CorpusOpenAlex:
		src := &discover.OpenAlexSource{
			Client:       client,
			Email:        cfg.OpenAlexEmail,
			UserAgent:    cfg.UserAgent,
			RefsPerPaper: cfg.RefsPerPaper,
		}
		return src, &fulltext.OpenAlexSource{Client: client, Email: cfg.OpenAlexEmail, UserAgent: cfg.UserAgent}, nil

	default:
		return nil, nil, fmt.Errorf("unknown corpus %q (want scopus or openalex)", cfg.Corpus)
	}
}

// buildBackend constructs the AI extraction backend for the selected
// provider.
func buildBackend(cfg types.ExtractionConfig) (crawl.Extractor, error) {
	switch cfg.Provider {
	case types.ProviderClaude:
		cfg.APIKey = secretDefault("anthropic-api-key", viper.GetString("anthropic_api_key"))
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("claude provider requires an API key (.secrets/anthropic-api-key or CITEHARVEST_ANTHROPIC_API_KEY)")
		}
		return extract.NewClaudeBackend(cfg, nil), nil

	case types.ProviderOpenAI:
		cfg.APIKey = secretDefault("openai-api-key", viper.GetString("openai_api_key"))
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key (.secrets/openai-api-key or CITEHARVEST_OPENAI_API_KEY)")
		}
		return extract.NewOpenAIBackend(cfg), nil

	default:
		return nil, fmt.Errorf("unknown provider %q (want claude or openai)", cfg.Provider)
	}
}

// writeResults persists the crawl result to every configured sink.
func writeResults(cmd *cobra.Command, res *crawl.Result, seed fulltext.Seed, cfg types.SinkConfig, startedAt time.Time) error {
	if err := sink.WriteCSV(cfg.OutputPath, res.Records); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if cfg.DBPath != "" {
		store, err := sink.NewStore(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening facts database: %w", err)
		}
		defer store.Close()
		if err := store.Insert(cmd.Context(), res.Records); err != nil {
			return fmt.Errorf("archiving facts: %w", err)
		}
	}

	if cfg.ManifestPath != "" {
		m := sink.Manifest{
			SeedID:          seed.ID,
			SeedTitle:       seed.Title,
			StartedAt:       startedAt,
			FinishedAt:      time.Now().UTC(),
			Processed:       res.Processed,
			Facts:           len(res.Records),
			DocsByDistance:  res.DocsByDistance,
			FactsByDistance: res.FactsByDistance,
			OutputPath:      cfg.OutputPath,
		}
		if err := sink.WriteManifest(cfg.ManifestPath, m); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
	}

	return nil
}

// printSummary reports the per-distance breakdown of the finished run.
func printSummary(res *crawl.Result, outputPath string) {
	fmt.Printf("\nprocessed %d paper(s), harvested %d fact(s)\n", res.Processed, len(res.Records))

	distances := make([]int, 0, len(res.DocsByDistance))
	for d := range res.DocsByDistance {
		distances = append(distances, d)
	}
	sort.Ints(distances)
	for _, d := range distances {
		fmt.Printf("  distance %d: %d paper(s), %d fact(s)\n", d, res.DocsByDistance[d], res.FactsByDistance[d])
	}

	if len(res.Records) == 0 {
		fmt.Println("no species facts found; wrote header-only CSV")
	}
	fmt.Printf("results written to %s\n", outputPath)
}
