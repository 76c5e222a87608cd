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
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🚌 Bus writes every event as one JSON line and forwards it to at most
// one subscriber.
type Bus struct {
	mu  sync.Mutex
	out zerolog.Logger
	sub Subscriber
}

// 🏭 New creates a bus writing its event lines to w
func New(w io.Writer) *Bus {
	return &Bus{
		out: zerolog.New(w),
	}
}

var std = New(os.Stdout)

// Default returns the process-wide bus writing to stdout.
func Default() *Bus {
	return std
}

// Subscribe sets the subscriber slot. A later call replaces the earlier
// subscriber; nil clears it.
func (b *Bus) Subscribe(sub Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sub = sub
}

// Subscribed reports whether a subscriber is currently registered.
func (b *Bus) Subscribed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sub != nil
}

// 📣 Emit writes the event line, then calls the subscriber (if any) in the
// calling goroutine. The line is written even when the subscriber fails.
func (b *Bus) Emit(ctx context.Context, kind Kind, fields Fields) error {
	b.mu.Lock()
	b.out.Log().Str("event", string(kind)).Fields(map[string]any(fields)).Send()
	sub := b.sub
	b.mu.Unlock()

	if sub == nil {
		return nil
	}

	if err := sub(ctx, Event{Kind: kind, Fields: fields}); err != nil {
		return errors.Errorf("notifying subscriber of %s: %w", kind, err)
	}
	return nil
}

// Emit emits on the default bus.
func Emit(ctx context.Context, kind Kind, fields Fields) error {
	return std.Emit(ctx, kind, fields)
}

// Subscribe sets the subscriber of the default bus.
func Subscribe(sub Subscriber) {
	std.Subscribe(sub)
}
