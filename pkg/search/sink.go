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

package search

import (
	"container/heap"
	"sync"

	"github.com/rcorre/lasr/pkg/matcher"
	"gitlab.com/tozd/go/errors"
)

// errSinkCancelled tells a pushing worker to stop producing.
var errSinkCancelled = errors.Base("sink cancelled")

// 🗃️ resultHeap is a min-heap of FileResults keyed by enumeration index.
type resultHeap []matcher.FileResult

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].Index < h[j].Index }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(matcher.FileResult)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// 📤 sink is the ordered reorder buffer between workers and the consumer.
// Workers push completions in any order; the drain goroutine releases them
// strictly by enumeration index. At most limit out-of-order results are
// buffered; pushers beyond that block until the head advances, which bounds
// peak memory independent of file count.
type sink struct {
	mu        sync.Mutex
	cond      *sync.Cond
	pending   resultHeap
	head      int // next index to release
	limit     int
	closed    bool // no further pushes; drain until empty
	cancelled bool
	out       chan matcher.FileResult
	stop      chan struct{} // closed on cancel, unblocks a stuck send
	drained   chan struct{} // closed when drain exits
}

func newSink(limit int) *sink {
	s := &sink{
		limit:   limit,
		out:     make(chan matcher.FileResult, 1),
		stop:    make(chan struct{}),
		drained: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.drain()
	return s
}

// push hands one completed file to the sink, blocking on back-pressure.
func (s *sink) push(res matcher.FileResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for !s.cancelled && res.Index != s.head && len(s.pending) >= s.limit {
		s.cond.Wait()
	}
	if s.cancelled {
		return errors.WithStack(errSinkCancelled)
	}
	heap.Push(&s.pending, res)
	s.cond.Broadcast()
	return nil
}

// close marks the input complete; drain finishes the remaining results and
// closes the output channel.
func (s *sink) close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()
}

// cancel unblocks all pushers and the drain goroutine. Idempotent.
func (s *sink) cancel() {
	s.mu.Lock()
	if !s.cancelled {
		s.cancelled = true
		close(s.stop)
	}
	s.cond.Broadcast()
	s.mu.Unlock()
}

// drain releases buffered results in index order as they become contiguous.
func (s *sink) drain() {
	defer close(s.drained)
	defer close(s.out)
	for {
		s.mu.Lock()
		for !s.cancelled &&
			!(s.closed && len(s.pending) == 0) &&
			!(len(s.pending) > 0 && s.pending[0].Index == s.head) {
			s.cond.Wait()
		}
		if s.cancelled || (s.closed && len(s.pending) == 0) {
			s.mu.Unlock()
			return
		}
		res := heap.Pop(&s.pending).(matcher.FileResult)
		s.head++
		s.cond.Broadcast()
		s.mu.Unlock()

		select {
		case s.out <- res:
		case <-s.stop:
			return
		}
	}
}
