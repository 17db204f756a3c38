// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citeharvest/pkg/types"
)

// TextSource fetches the processable text for a document identifier.
// An empty string means the text is unavailable, which is not an error.
type TextSource interface {
	Fetch(ctx context.Context, id string) (string, error)
}

// Extractor pulls structured fact payloads out of document text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]map[string]string, error)
}

// Strategy is one way of discovering candidate related documents for a
// processed item. Strategies are tried in order; the first one that
// yields candidates wins. A strategy that does not apply to an item
// (e.g. reference listing for a placeholder identifier) returns an
// empty list, not an error.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, item types.WorkItem) ([]types.DocumentRef, error)
}

// Result accumulates the output of one crawl run.
type Result struct {
	// Records is the append-only fact collection, in processing order.
	Records []types.FactRecord

	// Processed counts documents dequeued for processing.
	Processed int

	// DocsByDistance counts processed documents per BFS depth.
	DocsByDistance map[int]int

	// FactsByDistance counts extracted records per BFS depth.
	FactsByDistance map[int]int
}

// Crawler drives the breadth-first traversal: one document at a time,
// strictly sequential, so the visit order stays deterministic and the
// rate-limited upstream APIs see at most one request burst per item.
type Crawler struct {
	text       TextSource
	extractor  Extractor
	strategies []Strategy
	cfg        types.CrawlConfig
	limiter    *rate.Limiter
	log        io.Writer
}

// Default crawl settings, matching the CLI defaults.
const (
	defaultMaxPapers = 20
	defaultMaxDepth  = 2
)

// New creates a crawler. Zero-valued config fields fall back to defaults;
// a nil log writer discards progress output.
func New(text TextSource, extractor Extractor, strategies []Strategy, cfg types.CrawlConfig, log io.Writer) *Crawler {
	if cfg.MaxPapers <= 0 {
		cfg.MaxPapers = defaultMaxPapers
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	if log == nil {
		log = io.Discard
	}
	return &Crawler{
		text:       text,
		extractor:  extractor,
		strategies: strategies,
		cfg:        cfg,
		limiter:    rate.NewLimiter(rate.Every(cfg.Delay), 1),
		log:        log,
	}
}

// Run traverses the citation graph starting from the seed document and
// returns the accumulated fact records. The seed is processed at
// distance 0; every document reached through discovery is processed at
// its parent's distance plus one, in FIFO order, until the queue drains
// or the visit budget is exhausted.
//
// Collaborator failures degrade to empty results and never abort the
// run. The only fatal conditions are an empty seed text and context
// cancellation; on cancellation the partial result is returned
// alongside the context error.
func (c *Crawler) Run(ctx context.Context, seed types.DocumentRef, seedText string) (*Result, error) {
	if strings.TrimSpace(seedText) == "" {
		return nil, fmt.Errorf("seed document %q yielded no text", seed.ID)
	}

	frontier := NewFrontier()
	frontier.Enqueue(seed, 0, seedText)

	res := &Result{
		DocsByDistance:  make(map[int]int),
		FactsByDistance: make(map[int]int),
	}

	for frontier.QueueLen() > 0 && HasCapacity(res.Processed, c.cfg.MaxPapers) {
		item, ok := frontier.Dequeue()
		if !ok {
			break
		}
		res.Processed++
		res.DocsByDistance[item.Distance]++

		fmt.Fprintf(c.log, "processing %d/%d (distance %d): %s\n",
			res.Processed, c.cfg.MaxPapers, item.Distance, truncate(item.Ref.Title, 50))

		c.harvest(ctx, item, res)

		if item.Distance < c.cfg.MaxDepth {
			c.discover(ctx, frontier, item, res.Processed)
		}

		// Inter-document courtesy delay; also the cancellation point.
		if frontier.QueueLen() > 0 && HasCapacity(res.Processed, c.cfg.MaxPapers) {
			if err := c.limiter.Wait(ctx); err != nil {
				return res, fmt.Errorf("crawl interrupted: %w", err)
			}
		}
	}

	return res, nil
}

// harvest runs the extractor on one item and appends the stamped
// records. Extraction failures are logged and treated as zero facts.
func (c *Crawler) harvest(ctx context.Context, item types.WorkItem, res *Result) {
	payloads, err := c.extractor.Extract(ctx, item.Text)
	if err != nil {
		fmt.Fprintf(c.log, "warning: extraction failed for %s: %v\n", item.Ref.ID, err)
		return
	}

	for _, payload := range payloads {
		res.Records = append(res.Records, types.FactRecord{
			SourceID: item.Ref.ID,
			Distance: item.Distance,
			Title:    strings.TrimSpace(item.Ref.Title),
			Payload:  payload,
		})
	}
	res.FactsByDistance[item.Distance] += len(payloads)
	fmt.Fprintf(c.log, "  extracted %d fact(s)\n", len(payloads))
}

// discover finds candidate references for item, filters them by keyword,
// fetches their text, and enqueues the ones with usable text at
// distance+1. Fetching stops early once queued plus processed documents
// reach the visit budget; there is no point discovering more work than
// the budget allows.
func (c *Crawler) discover(ctx context.Context, frontier *Frontier, item types.WorkItem, processed int) {
	var candidates []types.DocumentRef
	for _, s := range c.strategies {
		refs, err := s.Discover(ctx, item)
		if err != nil {
			fmt.Fprintf(c.log, "warning: %s discovery failed for %s: %v\n", s.Name(), item.Ref.ID, err)
			continue
		}
		if len(refs) > 0 {
			fmt.Fprintf(c.log, "  %s found %d candidate(s)\n", s.Name(), len(refs))
			candidates = refs
			break
		}
	}

	if len(c.cfg.Keywords) > 0 {
		kept := FilterByKeywords(candidates, c.cfg.Keywords)
		fmt.Fprintf(c.log, "  keyword filter kept %d of %d candidate(s)\n", len(kept), len(candidates))
		candidates = kept
	}

	added := 0
	for _, cand := range candidates {
		if frontier.QueueLen()+processed >= c.cfg.MaxPapers {
			break
		}
		if frontier.Seen(cand.ID) {
			continue
		}

		text, err := c.text.Fetch(ctx, cand.ID)
		if err != nil {
			fmt.Fprintf(c.log, "warning: text fetch failed for %s: %v\n", cand.ID, err)
			continue
		}
		if text == "" {
			fmt.Fprintf(c.log, "  no text available for: %s\n", truncate(cand.Title, 50))
			continue
		}

		if frontier.Enqueue(cand, item.Distance+1, text) {
			added++
			fmt.Fprintf(c.log, "  queued (distance %d): %s\n", item.Distance+1, truncate(cand.Title, 50))
		}
	}

	if added > 0 {
		fmt.Fprintf(c.log, "  added %d reference(s) to queue\n", added)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
