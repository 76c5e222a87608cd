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

package activity

import (
	"context"
	"encoding/json"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/pkg/config"
	"github.com/walteh/imgcollect/pkg/events"
)

// Actions written for a collect run.
const (
	ActionCollect         = "collect_images"
	ActionCollectComplete = "collect_images_complete"
)

// 📝 Subscriber records the lifecycle of one collect run: a running row on
// start (with the config), a complete row with the final counts, or a
// failed row with the error. Per-file events are not stored.
func (s *Store) Subscriber(cfg *config.Config) events.Subscriber {
	return func(ctx context.Context, ev events.Event) error {
		var (
			a       Activity
			details any
		)

		switch ev.Kind {
		case events.KindStart:
			a = Activity{Action: ActionCollect, Status: StatusRunning}
			details = map[string]any{"config": cfg}
		case events.KindComplete:
			a = Activity{Action: ActionCollectComplete, Status: StatusComplete}
			details = map[string]any{
				"total":       ev.Int("total"),
				"copied":      ev.Int("copied"),
				"renamed":     ev.Int("renamed"),
				"skipped":     ev.Int("skipped"),
				"deleted":     ev.Int("deleted"),
				"destination": ev.Str("destination"),
			}
		case events.KindError:
			a = Activity{Action: ActionCollect, Status: StatusFailed}
			details = map[string]any{"error": ev.Str("error")}
		default:
			return nil
		}

		data, err := json.Marshal(details)
		if err != nil {
			return errors.Errorf("encoding %s details: %w", ev.Kind, err)
		}
		a.Details = string(data)

		if _, err := s.Log(ctx, a); err != nil {
			return errors.Errorf("recording %s: %w", ev.Kind, err)
		}
		return nil
	}
}
