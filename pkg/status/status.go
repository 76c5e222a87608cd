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

package status

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/pkg/events"
)

// ErrJobNotFound is returned for ids the tracker never issued.
var ErrJobNotFound = errors.Base("job not found")

// 📊 State is where a job is in its lifecycle
type State string

const (
	StateRunning  State = "running"
	StateComplete State = "complete"
	StateFailed   State = "failed"
)

// Counts mirror the engine result as seen through events.
type Counts struct {
	Total   int `json:"total"`
	Copied  int `json:"copied"`
	Renamed int `json:"renamed"`
	Skipped int `json:"skipped"`
	Deleted int `json:"deleted"`
}

// 📄 Job is a snapshot of one tracked run
type Job struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	State      State     `json:"state"`
	Counts     Counts    `json:"counts"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Err        string    `json:"error,omitempty"`
}

// Duration is how long the job ran, or has been running so far.
func (j Job) Duration() time.Duration {
	if j.FinishedAt.IsZero() {
		return time.Since(j.StartedAt)
	}
	return j.FinishedAt.Sub(j.StartedAt)
}

// Done reports whether the job reached a terminal state.
func (j Job) Done() bool {
	return j.State == StateComplete || j.State == StateFailed
}

// 🔧 Tracker is an in-memory registry of jobs, safe for concurrent use
type Tracker struct {
	formatter Formatter
	now       func() time.Time

	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// 🏭 NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		formatter: NewDefaultFormatter(),
		now:       time.Now,
		jobs:      make(map[uuid.UUID]*Job),
	}
}

// Start registers a running job and returns its id.
func (t *Tracker) Start(action string) uuid.UUID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := uuid.New()
	t.jobs[id] = &Job{
		ID:        id,
		Action:    action,
		State:     StateRunning,
		StartedAt: t.now(),
	}
	return id
}

// 👀 Observe returns a subscriber folding a run's events into job id.
// Per-file events move the live counts; complete and error finish the job.
func (t *Tracker) Observe(id uuid.UUID) events.Subscriber {
	return func(ctx context.Context, ev events.Event) error {
		t.mu.Lock()
		defer t.mu.Unlock()

		job, ok := t.jobs[id]
		if !ok {
			return errors.Errorf("%w: %s", ErrJobNotFound, id)
		}

		debug := func(msg string) {
			zerolog.Ctx(ctx).Debug().Str("job", id.String()).Msg(msg)
		}
		file := ev.Str("file")

		switch ev.Kind {
		case events.KindStart:
			return nil
		case events.KindCopied, events.KindOverwritten:
			job.Counts.Total++
			job.Counts.Copied++
		case events.KindRenamed:
			job.Counts.Total++
			job.Counts.Renamed++
		case events.KindSkipped:
			job.Counts.Total++
			job.Counts.Skipped++
		case events.KindDeleted:
			job.Counts.Deleted++
		case events.KindMissing:
			file = ev.Str("source")
		case events.KindComplete:
			job.Counts = Counts{
				Total:   ev.Int("total"),
				Copied:  ev.Int("copied"),
				Renamed: ev.Int("renamed"),
				Skipped: ev.Int("skipped"),
				Deleted: ev.Int("deleted"),
			}
			job.State = StateComplete
			job.FinishedAt = t.now()
			debug(t.formatter.FormatJob(*job))
			return nil
		case events.KindError:
			job.State = StateFailed
			job.Err = ev.Str("error")
			job.FinishedAt = t.now()
			debug(t.formatter.FormatJob(*job))
			return nil
		}

		debug(t.formatter.FormatAction(ev.Kind, file))
		return nil
	}
}

// Fail marks a job failed unless it already finished. It covers failures
// that happen before or outside the engine's own error event.
func (t *Tracker) Fail(id uuid.UUID, cause error) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[id]
	if !ok {
		return errors.Errorf("%w: %s", ErrJobNotFound, id)
	}
	if job.Done() {
		return nil
	}
	job.State = StateFailed
	job.Err = cause.Error()
	job.FinishedAt = t.now()
	return nil
}

// Get returns a snapshot of one job.
func (t *Tracker) Get(id uuid.UUID) (Job, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[id]
	if !ok {
		return Job{}, errors.Errorf("%w: %s", ErrJobNotFound, id)
	}
	return *job, nil
}

// List returns snapshots of every job, oldest first.
func (t *Tracker) List() []Job {
	t.mu.RLock()
	defer t.mu.RUnlock()

	jobs := make([]Job, 0, len(t.jobs))
	for _, job := range t.jobs {
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartedAt.Before(jobs[j].StartedAt)
	})
	return jobs
}

// Format renders one job with the tracker's formatter.
func (t *Tracker) Format(job Job) string {
	return t.formatter.FormatJob(job)
}
