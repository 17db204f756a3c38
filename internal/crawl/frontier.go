// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl walks the citation graph breadth-first from a seed paper,
// extracting fact records from each visited document and discovering new
// candidates through pluggable reference/search strategies.
package crawl

import "github.com/pdiddy/citeharvest/pkg/types"

// Frontier is the work queue for one crawl run: a FIFO of fetched
// documents plus the bookkeeping that guarantees each identifier is
// processed at most once across all branches of the citation graph.
//
// A single goroutine owns the frontier for the lifetime of a run, so
// no locking is needed. An ID enters visited exactly once, at the
// moment it is dequeued; visited and queuedIDs are always disjoint.
type Frontier struct {
	queue     []types.WorkItem
	visited   map[string]bool
	queuedIDs map[string]bool
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{
		visited:   make(map[string]bool),
		queuedIDs: make(map[string]bool),
	}
}

// Enqueue appends a work item for ref at the given distance. It returns
// false without side effects when the ID has already been queued or
// visited, so duplicate discoveries across branches collapse here.
func (f *Frontier) Enqueue(ref types.DocumentRef, distance int, text string) bool {
	if f.visited[ref.ID] || f.queuedIDs[ref.ID] {
		return false
	}
	f.queue = append(f.queue, types.WorkItem{Ref: ref, Distance: distance, Text: text})
	f.queuedIDs[ref.ID] = true
	return true
}

// Dequeue pops the head of the queue and marks its ID visited. The
// second return value is false when the queue is empty. This is the
// sole place visited is mutated.
func (f *Frontier) Dequeue() (types.WorkItem, bool) {
	if len(f.queue) == 0 {
		return types.WorkItem{}, false
	}
	item := f.queue[0]
	f.queue = f.queue[1:]
	delete(f.queuedIDs, item.Ref.ID)
	f.visited[item.Ref.ID] = true
	return item, true
}

// Seen reports whether id has been queued or already processed. The
// crawler consults this before fetching text for a candidate, to avoid
// wasted upstream calls for documents Enqueue would reject anyway.
func (f *Frontier) Seen(id string) bool {
	return f.visited[id] || f.queuedIDs[id]
}

// QueueLen returns the number of items awaiting processing.
func (f *Frontier) QueueLen() int {
	return len(f.queue)
}

// RemainingBudget returns how many more documents may be processed
// given the global budget maxTotal.
func RemainingBudget(processed, maxTotal int) int {
	if remaining := maxTotal - processed; remaining > 0 {
		return remaining
	}
	return 0
}

// HasCapacity reports whether the visit budget allows processing
// another document.
func HasCapacity(processed, maxTotal int) bool {
	return RemainingBudget(processed, maxTotal) > 0
}
