// Package orchestrator runs scans end to end.
// It coordinates: aggregation → classification → recording → publishing
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"solana-token-scanner/internal/classifier"
	"solana-token-scanner/internal/domain"
	"solana-token-scanner/internal/idhash"
	"solana-token-scanner/internal/observability"
	"solana-token-scanner/internal/publish"
	"solana-token-scanner/internal/reporting"
	"solana-token-scanner/internal/storage"
)

// TokenScanner produces the canonical tokens of one scan.
// Implemented by aggregator.Aggregator.
type TokenScanner interface {
	Scan(ctx context.Context, minLiquidity, minVolume float64) ([]*domain.Token, error)
}

// Orchestrator runs one scan at a time.
// Flow: scan → classify → record → publish
type Orchestrator struct {
	scanner    TokenScanner
	classifier classifier.Classifier

	// Optional collaborators; nil disables the step.
	tokenStore    storage.TokenStore
	snapshotStore storage.SnapshotStore
	sink          publish.Sink

	minLiquidity float64
	minVolume    float64

	closers []io.Closer
	logger  *log.Logger
	now     func() time.Time

	// mu serializes scans; the upstream rate limiter is single-flow.
	mu sync.Mutex

	lastMu sync.RWMutex
	last   *RunResult
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Scanner    TokenScanner
	Classifier classifier.Classifier

	// Optional stores and sink
	TokenStore    storage.TokenStore
	SnapshotStore storage.SnapshotStore
	Sink          publish.Sink

	// Filters passed to the scanner
	MinLiquidity float64
	MinVolume    float64

	// Closers are released by Close, e.g. upstream sessions and store connections.
	Closers []io.Closer

	Logger *log.Logger
	Now    func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Scanner == nil {
		return nil, errors.New("orchestrator: scanner is required")
	}
	if opts.Classifier == nil {
		return nil, errors.New("orchestrator: classifier is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Orchestrator{
		scanner:       opts.Scanner,
		classifier:    opts.Classifier,
		tokenStore:    opts.TokenStore,
		snapshotStore: opts.SnapshotStore,
		sink:          opts.Sink,
		minLiquidity:  opts.MinLiquidity,
		minVolume:     opts.MinVolume,
		closers:       opts.Closers,
		logger:        logger,
		now:           now,
	}, nil
}

// RunResult contains results from one scan.
type RunResult struct {
	ScanID     string
	StartedAt  time.Time
	Duration   time.Duration
	Scanned    int // tokens accepted by the scanner
	Result     *classifier.Result
	Report     *reporting.Report
	StoreError int  // failed store operations
	Published  bool // sink accepted the report
}

// Classifier returns the configured classifier.
func (o *Orchestrator) Classifier() classifier.Classifier {
	return o.classifier
}

// Last returns the most recent successful scan, or nil.
func (o *Orchestrator) Last() *RunResult {
	o.lastMu.RLock()
	defer o.lastMu.RUnlock()
	return o.last
}

// Scan runs one scan. Only scanner errors (cancellation) fail it;
// store and sink failures are logged and counted.
func (o *Orchestrator) Scan(ctx context.Context) (*RunResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	started := o.now()
	name := o.classifier.Name()

	tokens, err := o.scanner.Scan(ctx, o.minLiquidity, o.minVolume)
	if err != nil {
		observability.RecordScan("error", o.now().Sub(started).Seconds())
		return nil, fmt.Errorf("scan tokens: %w", err)
	}

	o.log("Classifying %d tokens", len(tokens))
	res := o.classifier.Classify(tokens)
	o.log("Found %d tokens across %d categories", res.Count(), nonEmptyGroups(res))
	recordClassified(res)

	addresses := make([]string, len(tokens))
	for i, t := range tokens {
		addresses[i] = t.BaseToken.Address
	}
	scanID := idhash.ComputeScanID(started.UnixMilli(), name, addresses)

	run := &RunResult{
		ScanID:    scanID,
		StartedAt: started,
		Scanned:   len(tokens),
		Result:    res,
	}
	run.StoreError = o.record(ctx, scanID, started.UnixMilli(), tokens)

	run.Report = reporting.Build(res, started)
	run.Report.ScanID = scanID
	run.Published = o.publish(ctx, run.Report)

	run.Duration = o.now().Sub(started)
	observability.RecordScan("success", run.Duration.Seconds())
	o.log("Scan %s done in %s (%d scanned, %d surfaced, %d store errors)",
		scanID[:12], run.Duration.Round(time.Millisecond), run.Scanned, res.Count(), run.StoreError)

	o.lastMu.Lock()
	o.last = run
	o.lastMu.Unlock()

	return run, nil
}

// record persists registry sightings and market snapshots. Returns the
// number of failed operations. Each address is sighted once per scan and
// each (address, pair) is snapshotted once, whatever the scanner returned.
func (o *Orchestrator) record(ctx context.Context, scanID string, scannedAt int64, tokens []*domain.Token) int {
	failures := 0

	if o.tokenStore != nil {
		sighted := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := sighted[t.BaseToken.Address]; ok {
				continue
			}
			sighted[t.BaseToken.Address] = struct{}{}
			if err := o.tokenStore.Upsert(ctx, storage.SightingFromToken(t, scannedAt)); err != nil {
				failures++
				observability.RecordStoreError("token", "upsert")
				o.log("Upsert %s failed: %v", t.BaseToken.Address, err)
			}
		}
	}

	if o.snapshotStore != nil && len(tokens) > 0 {
		snaps := make([]*domain.MarketSnapshot, 0, len(tokens))
		keys := make(map[storage.SnapshotKey]struct{}, len(tokens))
		for _, t := range tokens {
			snap := domain.SnapshotFromToken(scanID, scannedAt, t)
			key := storage.KeyOf(snap)
			if _, dup := keys[key]; dup {
				continue
			}
			keys[key] = struct{}{}
			snaps = append(snaps, snap)
		}
		if err := o.snapshotStore.InsertBulk(ctx, snaps); err != nil {
			failures++
			observability.RecordStoreError("snapshot", "insert_bulk")
			o.log("Snapshot insert failed: %v", err)
		}
	}

	return failures
}

func (o *Orchestrator) publish(ctx context.Context, report *reporting.Report) bool {
	if o.sink == nil {
		return false
	}
	err := o.sink.Emit(ctx, publish.TypeScanResult, report)
	observability.RecordPublish(publish.NameOf(o.sink), err)
	if err != nil {
		o.log("Publish failed: %v", err)
		return false
	}
	return true
}

// Close releases the sink and every configured closer.
func (o *Orchestrator) Close() error {
	var errs []error
	if o.sink != nil {
		if err := o.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sink: %w", err))
		}
	}
	for _, c := range o.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func recordClassified(res *classifier.Result) {
	if res.Kind == classifier.KindFiltered {
		observability.RecordClassified(res.Classifier, "filtered", len(res.Tokens))
		return
	}
	for _, c := range domain.Categories {
		observability.RecordClassified(res.Classifier, c.String(), len(res.Categories[c]))
	}
}

func nonEmptyGroups(res *classifier.Result) int {
	if res.Kind == classifier.KindFiltered {
		if len(res.Tokens) > 0 {
			return 1
		}
		return 0
	}
	n := 0
	for _, tokens := range res.Categories {
		if len(tokens) > 0 {
			n++
		}
	}
	return n
}

func (o *Orchestrator) log(format string, args ...any) {
	o.logger.Printf(format, args...)
}
