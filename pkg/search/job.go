// Copyright 2025 Ryan Roden-Corrent
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package search runs one generation of matching work: it fans files across
// a worker pool and streams per-file results in enumeration order.
package search

import (
	"context"
	"runtime"

	"github.com/rcorre/lasr/pkg/matcher"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultReorderCap bounds how many out-of-order completions the ordered
// sink buffers before workers block.
const DefaultReorderCap = 64

// ⚙️ Params configures one SearchJob.
type Params struct {
	Matcher    *matcher.FileMatcher
	Files      []string
	Generation uint64
	// Workers sets the pool size; 0 auto-selects from available parallelism.
	Workers int
	// ReorderCap bounds the ordered sink's buffer; 0 selects the default.
	ReorderCap int
}

// 🏃 Job is one generation of search work. It is started once, streams
// FileResults in enumeration order on Results, and is cancelled at any time
// without blocking the caller.
type Job struct {
	params Params
	sink   *sink
	cancel context.CancelFunc
}

type workItem struct {
	index int
	path  string
}

// 🏭 New creates a job; Start launches it.
func New(params Params) *Job {
	if params.Workers <= 0 {
		params.Workers = runtime.NumCPU()
	}
	if params.ReorderCap <= 0 {
		params.ReorderCap = DefaultReorderCap
	}
	return &Job{
		params: params,
		sink:   newSink(params.ReorderCap),
	}
}

// Generation identifies the input state this job was built from.
func (j *Job) Generation() uint64 {
	return j.params.Generation
}

// Results streams FileResults in enumeration order. The channel closes when
// every file has been reported or the job is cancelled.
func (j *Job) Results() <-chan matcher.FileResult {
	return j.sink.out
}

// 🚀 Start launches the feeder and worker pool. Non-blocking.
func (j *Job) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	j.cancel = cancel

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Uint64("generation", j.params.Generation).
		Int("files", len(j.params.Files)).
		Int("workers", j.params.Workers).
		Msg("starting search job")

	// Cancellation must unblock workers stuck on sink back-pressure. After a
	// clean drain there is nothing left to unblock.
	go func() {
		select {
		case <-ctx.Done():
			j.sink.cancel()
		case <-j.sink.drained:
		}
	}()

	work := make(chan workItem, j.params.Workers*2)
	go func() {
		defer close(work)
		for i, path := range j.params.Files {
			select {
			case work <- workItem{index: i, path: path}:
			case <-ctx.Done():
				return
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < j.params.Workers; w++ {
		g.Go(func() error {
			return j.worker(gctx, work)
		})
	}
	go func() {
		// Workers only fail on cancellation; the sink then discards what it
		// has and closes.
		if err := g.Wait(); err != nil {
			logger.Debug().Uint64("generation", j.params.Generation).Err(err).Msg("search job cancelled")
			j.sink.cancel()
			cancel()
			return
		}
		logger.Debug().Uint64("generation", j.params.Generation).Msg("search job complete")
		j.sink.close()
		<-j.sink.drained
		cancel()
	}()
}

// worker pulls files until the queue closes or the job is cancelled.
// Cancellation is checked before each dequeue; the matcher checks again
// between matches inside long files.
func (j *Job) worker(ctx context.Context, work <-chan workItem) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case item, ok := <-work:
			if !ok {
				return nil
			}
			res := j.params.Matcher.MatchFile(ctx, item.path, item.index, j.params.Generation)
			if res.Err != nil && ctx.Err() != nil {
				// Interrupted mid-file; the generation is dead.
				return ctx.Err()
			}
			if err := j.sink.push(res); err != nil {
				return err
			}
		}
	}
}

// 🛑 Cancel stops the job without blocking. Workers observe the signal at
// their next check point; already-emitted results stay valid for this
// job's generation.
func (j *Job) Cancel() {
	if j.cancel != nil {
		j.cancel()
	}
	j.sink.cancel()
}
