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

package operation

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/pkg/activity"
	"github.com/walteh/imgcollect/pkg/config"
	"github.com/walteh/imgcollect/pkg/consolidate"
	"github.com/walteh/imgcollect/pkg/events"
	"github.com/walteh/imgcollect/pkg/log"
	"github.com/walteh/imgcollect/pkg/status"
)

// RunLogAction names the directory under {DataDir}/logs holding collect
// run logs.
const RunLogAction = "image_merge"

// activityQueueSize bounds how far the activity recorder may fall behind.
const activityQueueSize = 64

// 🏃 Operation is a unit of work a Runner can execute
type Operation interface {
	Execute(ctx context.Context) error
}

// 🔧 Options contains everything one collect job needs
type Options struct {
	// Config is the consolidation config (required)
	Config *config.Config
	// DataDir receives the per-run log file; empty disables it
	DataDir string
	// Activity, when set, records the job lifecycle
	Activity *activity.Store
	// Tracker, when set, tracks the job in memory
	Tracker *status.Tracker
	// Bus receives the event stream; defaults to the process-wide bus
	Bus *events.Bus
	// Fs is the filesystem merged on; defaults to the OS
	Fs afero.Fs
	// Console receives human-readable progress; defaults to io.Discard
	Console io.Writer
	// Level is the run log level
	Level zerolog.Level
	// Now stamps the run log name; defaults to time.Now
	Now func() time.Time
}

// 📦 Outcome is what a finished (or failed) collect job leaves behind
type Outcome struct {
	Result  *consolidate.Result
	JobID   uuid.UUID
	LogPath string
}

// 🚀 Collect runs one collect job: it opens the run log, registers the job
// with the tracker, wires the activity recorder behind a queue, and runs
// the engine. The outcome is returned even on failure, with whatever the
// engine got through.
func Collect(ctx context.Context, opts Options) (*Outcome, error) {
	if opts.Config == nil {
		return nil, errors.Errorf("config is required")
	}
	if opts.Console == nil {
		opts.Console = io.Discard
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	zlog := zerolog.Ctx(ctx)
	out := &Outcome{}

	var runFile io.Writer = io.Discard
	if opts.DataDir != "" {
		f, err := log.OpenRunFile(log.RunFileDir(opts.DataDir, RunLogAction), "collect", opts.Now())
		if err != nil {
			return nil, errors.Errorf("opening run log: %w", err)
		}
		defer f.Close()
		runFile = f
		out.LogPath = f.Name()
	}

	logger := log.New(opts.Console, runFile, opts.Level)
	ctx = log.NewContext(ctx, logger)
	logger.Header(opts.Config.String())
	if loc := opts.Config.Location(); loc != "" {
		logger.Infof("Config: %s", loc)
	}

	var subs []events.Subscriber

	if opts.Tracker != nil {
		out.JobID = opts.Tracker.Start(consolidate.ActionName)
		subs = append(subs, opts.Tracker.Observe(out.JobID))
	}

	var queue *events.Queue
	if opts.Activity != nil {
		// persistence must still record a cancelled run's failure
		queue = events.NewQueue(context.WithoutCancel(ctx), activityQueueSize, opts.Activity.Subscriber(opts.Config))
		subs = append(subs, queue.Subscriber())
	}

	var recorder events.Subscriber
	if len(subs) > 0 {
		recorder = events.Tee(subs...)
	}

	engine := consolidate.New(consolidate.Options{
		Fs:  opts.Fs,
		Bus: opts.Bus,
	})

	res, runErr := engine.Run(ctx, opts.Config, recorder)
	out.Result = res

	if queue != nil {
		if err := queue.Close(); err != nil {
			zlog.Error().Err(err).Msg("activity log incomplete")
			runErr = errors.Join(runErr, errors.Errorf("recording activity: %w", err))
		}
	}

	if runErr != nil {
		if opts.Tracker != nil {
			if err := opts.Tracker.Fail(out.JobID, runErr); err != nil {
				zlog.Error().Err(err).Msg("marking job failed")
			}
		}
		return out, runErr
	}

	logger.LogNewline()
	logger.Successf("Collected %d files into %s", res.Total, opts.Config.Destination)
	if out.LogPath != "" {
		logger.Infof("Run log: %s", out.LogPath)
	}
	return out, nil
}

// 📋 CollectOperation adapts Collect to the Operation interface. Outcome
// is set once Execute returns.
type CollectOperation struct {
	Options Options
	Outcome *Outcome
}

// Execute runs the collect job.
func (op *CollectOperation) Execute(ctx context.Context) error {
	out, err := Collect(ctx, op.Options)
	op.Outcome = out
	if err != nil {
		return errors.Errorf("collecting images: %w", err)
	}
	return nil
}
