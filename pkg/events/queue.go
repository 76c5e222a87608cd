// Copyright 2025 walteh LLC
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

package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrQueueClosed is returned when an event is offered after Close.
var ErrQueueClosed = errors.Base("event queue closed")

// 📬 Queue hands events to a slow handler on its own goroutine so the
// emitting loop only pays for a channel send.
type Queue struct {
	ch     chan Event
	group  *errgroup.Group
	mu     sync.RWMutex
	closed bool
	once   sync.Once
	err    error
}

// 🏭 NewQueue starts the consumer goroutine. Events reach handler in the
// order they were offered. After the first handler error the remaining
// events are drained and dropped.
func NewQueue(ctx context.Context, size int, handler Subscriber) *Queue {
	if size < 1 {
		size = 1
	}
	q := &Queue{ch: make(chan Event, size)}

	group, gctx := errgroup.WithContext(ctx)
	q.group = group
	group.Go(func() error {
		var first error
		for ev := range q.ch {
			if first != nil {
				continue
			}
			if err := handler(gctx, ev); err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Str("event", string(ev.Kind)).Msg("queued subscriber failed")
				first = errors.Errorf("handling queued %s event: %w", ev.Kind, err)
			}
		}
		return first
	})

	return q
}

// Subscriber returns the enqueueing side of the queue.
func (q *Queue) Subscriber() Subscriber {
	return func(ctx context.Context, ev Event) error {
		q.mu.RLock()
		defer q.mu.RUnlock()
		if q.closed {
			return ErrQueueClosed
		}
		// a free slot always wins, even for a cancelled caller
		select {
		case q.ch <- ev:
			return nil
		default:
		}
		select {
		case q.ch <- ev:
			return nil
		case <-ctx.Done():
			return errors.Errorf("enqueueing %s event: %w", ev.Kind, ctx.Err())
		}
	}
}

// Close stops accepting events, waits for the consumer to drain, and
// returns the first handler error. Close is idempotent.
func (q *Queue) Close() error {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.ch)
		q.mu.Unlock()
		q.err = q.group.Wait()
	})
	return q.err
}
