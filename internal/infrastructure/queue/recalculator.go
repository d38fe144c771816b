package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/man7ober/natours/internal/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recalcTimeout  = 10 * time.Second
)

// Maintainer recomputes the rating aggregate for one tour.
type Maintainer interface {
	Recalculate(ctx context.Context, tourID primitive.ObjectID) error
}

// RatingRecalculator runs rating recomputations off the request path. Tours
// are sharded onto a fixed set of workers by consistent hashing, so writes to
// the same tour recompute in order while the triggering request never waits.
// Failures are logged and counted, never reported to the client.
type RatingRecalculator struct {
	workers    []chan primitive.ObjectID
	maintainer Maintainer
	log        zerolog.Logger
}

// NewRatingRecalculator creates a recalculator with numWorkers sharded
// workers. If numWorkers <= 0, defaultWorkers is used.
func NewRatingRecalculator(numWorkers int, maintainer Maintainer, log zerolog.Logger) *RatingRecalculator {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	r := &RatingRecalculator{
		workers:    make([]chan primitive.ObjectID, numWorkers),
		maintainer: maintainer,
		log:        log,
	}
	for i := range r.workers {
		r.workers[i] = make(chan primitive.ObjectID, channelBuffer)
	}
	return r
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (r *RatingRecalculator) Start(ctx context.Context) {
	for i, ch := range r.workers {
		go r.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules a recompute for the tour. Non-blocking up to the channel
// buffer; a full shard drops the job and records the failure, keeping the
// review write path unblocked.
func (r *RatingRecalculator) Enqueue(tourID primitive.ObjectID) {
	select {
	case r.workers[r.shardIndex(tourID)] <- tourID:
	default:
		metrics.RatingRecalcTotal.WithLabelValues("error").Inc()
		r.log.Error().Str("tour_id", tourID.Hex()).Msg("rating recalc queue full, job dropped")
	}
}

func (r *RatingRecalculator) shardIndex(tourID primitive.ObjectID) int {
	h := fnv.New32a()
	_, _ = h.Write(tourID[:])
	return int(h.Sum32()) % len(r.workers)
}

func (r *RatingRecalculator) runWorker(ctx context.Context, id int, ch <-chan primitive.ObjectID) {
	for {
		select {
		case <-ctx.Done():
			return
		case tourID, ok := <-ch:
			if !ok {
				return
			}
			jobCtx, cancel := context.WithTimeout(ctx, recalcTimeout)
			err := r.maintainer.Recalculate(jobCtx, tourID)
			cancel()
			if err != nil {
				metrics.RatingRecalcTotal.WithLabelValues("error").Inc()
				r.log.Error().Err(err).
					Str("tour_id", tourID.Hex()).
					Int("worker_id", id).
					Msg("rating recalc failed")
				continue
			}
			metrics.RatingRecalcTotal.WithLabelValues("ok").Inc()
		}
	}
}
