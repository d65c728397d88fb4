package subscribe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Default pacing: pause after the first submission and every fifth one after it.
const (
	DefaultPaceEvery = 5
	DefaultPaceDelay = 100 * time.Millisecond
)

// Updater applies a subscription level to one channel on the server.
// Defined at the consumer; *traq.Client satisfies it.
type Updater interface {
	SetSubscriptionLevel(ctx context.Context, channelID string, level int) error
}

// Resolver maps a channel path to a channel ID.
// *channeltree.Cursor satisfies it.
type Resolver interface {
	NameToID(path string) (string, error)
}

// Options controls dispatch pacing. Zero values select the defaults; a
// negative PaceEvery disables pacing.
type Options struct {
	PaceEvery int
	PaceDelay time.Duration
}

// Report summarizes a finished batch.
type Report struct {
	BatchID string
	Applied []Request
	Failed  []Failure
}

// Batcher resolves channel paths and fans subscription updates out to the
// server. Dispatch is fire-all: a failing request never cancels its siblings.
type Batcher struct {
	updater   Updater
	paceEvery int
	paceDelay time.Duration
	logger    *slog.Logger

	// sleepFunc waits between paced submissions. Tests override it.
	sleepFunc func(ctx context.Context, d time.Duration) error
}

// NewBatcher creates a Batcher that sends updates through u.
func NewBatcher(u Updater, opts Options, logger *slog.Logger) *Batcher {
	if logger == nil {
		logger = slog.Default()
	}

	every := opts.PaceEvery
	if every == 0 {
		every = DefaultPaceEvery
	}

	delay := opts.PaceDelay
	if delay == 0 {
		delay = DefaultPaceDelay
	}

	return &Batcher{
		updater:   u,
		paceEvery: every,
		paceDelay: delay,
		logger:    logger,
		sleepFunc: timeSleep,
	}
}

// Resolve validates level and resolves every path, in order. It fails on the
// first path that does not resolve; nothing is sent to the server in that case.
func Resolve(r Resolver, paths []string, level Level) ([]Request, error) {
	if !level.Valid() {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLevel, int(level))
	}

	reqs := make([]Request, 0, len(paths))

	for _, p := range paths {
		id, err := r.NameToID(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %q: %w", p, err)
		}

		reqs = append(reqs, Request{ChannelID: id, Path: p, Level: level})
	}

	return reqs, nil
}

// ResolveAndApply resolves paths through r and applies level to all of them.
// Resolution errors are returned before any update is attempted.
func (b *Batcher) ResolveAndApply(ctx context.Context, r Resolver, paths []string, level Level) (*Report, error) {
	reqs, err := Resolve(r, paths, level)
	if err != nil {
		return nil, err
	}

	return b.Apply(ctx, reqs)
}

// Apply dispatches one goroutine per request and waits for all of them.
// After submitting the request at zero-based index i it sleeps for PaceDelay
// when i%PaceEvery == 0, so with the defaults it pauses after the 1st, 6th
// and 11th submission. If any request failed the returned error is a
// *BatchError; the Report is returned either way.
//
// If ctx is canceled during a pacing sleep, no further requests are
// submitted. Requests already in flight are detached from ctx and run to
// completion; the unsubmitted ones are reported as failed with the context
// error.
func (b *Batcher) Apply(ctx context.Context, reqs []Request) (*Report, error) {
	report := &Report{BatchID: uuid.NewString()}
	if len(reqs) == 0 {
		return report, nil
	}

	log := b.logger.With(slog.String("batch_id", report.BatchID))
	log.Info("dispatching subscription updates",
		slog.Int("count", len(reqs)),
		slog.Int("pace_every", b.paceEvery),
		slog.Duration("pace_delay", b.paceDelay),
	)

	results := make([]error, len(reqs))

	// Once sent, a request must not be torn down by an interrupt: the server
	// may already have applied it.
	sendCtx := context.WithoutCancel(ctx)

	var g errgroup.Group

	for i := range reqs {
		g.Go(func() error {
			results[i] = b.send(sendCtx, log, reqs[i])

			return results[i]
		})

		if !b.shouldPace(i) {
			continue
		}

		submitted := i + 1
		log.Debug("pacing dispatch", slog.Int("submitted", submitted))

		if err := b.sleepFunc(ctx, b.paceDelay); err != nil {
			log.Warn("dispatch interrupted",
				slog.Int("submitted", submitted),
				slog.String("error", err.Error()),
			)

			for j := submitted; j < len(reqs); j++ {
				results[j] = fmt.Errorf("not dispatched: %w", err)
			}

			break
		}
	}

	if err := g.Wait(); err != nil {
		log.Debug("batch had failures", slog.String("first_error", err.Error()))
	}

	for i, err := range results {
		if err != nil {
			report.Failed = append(report.Failed, Failure{Request: reqs[i], Err: err})
			continue
		}

		report.Applied = append(report.Applied, reqs[i])
	}

	log.Info("subscription updates finished",
		slog.Int("applied", len(report.Applied)),
		slog.Int("failed", len(report.Failed)),
	)

	if len(report.Failed) > 0 {
		return report, &BatchError{Failures: report.Failed, Total: len(reqs)}
	}

	return report, nil
}

// shouldPace reports whether to pause after submitting the request at
// zero-based index i.
func (b *Batcher) shouldPace(i int) bool {
	return b.paceEvery > 0 && i%b.paceEvery == 0
}

func (b *Batcher) send(ctx context.Context, log *slog.Logger, req Request) error {
	err := b.updater.SetSubscriptionLevel(ctx, req.ChannelID, int(req.Level))
	if err != nil {
		log.Warn("subscription update failed",
			slog.String("channel_id", req.ChannelID),
			slog.String("path", req.Path),
			slog.String("error", err.Error()),
		)

		return err
	}

	log.Debug("subscription updated",
		slog.String("channel_id", req.ChannelID),
		slog.String("level", req.Level.String()),
	)

	return nil
}

// timeSleep waits for d or until ctx is canceled.
func timeSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
