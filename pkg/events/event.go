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
	"fmt"
)

// 🏷️ Kind identifies what happened
type Kind string

const (
	KindStart       Kind = "start"
	KindCopied      Kind = "copied"
	KindSkipped     Kind = "skipped"
	KindRenamed     Kind = "renamed"
	KindOverwritten Kind = "overwritten"
	KindDeleted     Kind = "deleted"
	KindMissing     Kind = "missing"
	KindRejected    Kind = "rejected"
	KindComplete    Kind = "complete"
	KindError       Kind = "error"
)

// Fields carries the action-specific context of an event.
type Fields map[string]any

// 📨 Event is one emitted status record
type Event struct {
	Kind   Kind
	Fields Fields
}

// Str returns a string field, or "" when absent or not a string.
func (e Event) Str(key string) string {
	s, _ := e.Fields[key].(string)
	return s
}

// Int returns an integer field, or 0 when absent.
func (e Event) Int(key string) int {
	switch v := e.Fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case uint64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (e Event) String() string {
	return fmt.Sprintf("%s %v", e.Kind, map[string]any(e.Fields))
}

// 🔔 Subscriber receives events synchronously, in emission order.
// A returned error is propagated to whoever called Emit.
type Subscriber func(ctx context.Context, ev Event) error

// Tee calls each subscriber in turn and stops at the first error.
// Nil subscribers are ignored.
func Tee(subs ...Subscriber) Subscriber {
	live := make([]Subscriber, 0, len(subs))
	for _, s := range subs {
		if s != nil {
			live = append(live, s)
		}
	}
	return func(ctx context.Context, ev Event) error {
		for _, s := range live {
			if err := s(ctx, ev); err != nil {
				return err
			}
		}
		return nil
	}
}
