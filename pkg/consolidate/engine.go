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

package consolidate

import (
	"context"
	"io/fs"
	"iter"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/pkg/config"
	"github.com/walteh/imgcollect/pkg/events"
	"github.com/walteh/imgcollect/pkg/log"
	"github.com/walteh/imgcollect/pkg/naming"
)

// ActionName is reported in start, complete and error events.
const ActionName = "collect_images"

// maxClaimAttempts bounds how often a file is re-decided after losing a
// create-if-absent race.
const maxClaimAttempts = 3

// 🔧 Options configures an Engine. Zero values fall back to the OS
// filesystem, the process-wide bus and a wall-clock namer. Without a Logger
// the engine uses the one carried by the run's context.
type Options struct {
	Fs     afero.Fs
	Bus    *events.Bus
	Namer  *naming.Namer
	Logger *log.Logger
}

// 🏗️ Engine merges source directories into one destination
type Engine struct {
	fs     afero.Fs
	bus    *events.Bus
	namer  *naming.Namer
	logger *log.Logger
}

// 🏭 New creates an engine
func New(opts Options) *Engine {
	e := &Engine{
		fs:     opts.Fs,
		bus:    opts.Bus,
		namer:  opts.Namer,
		logger: opts.Logger,
	}
	if e.fs == nil {
		e.fs = afero.NewOsFs()
	}
	if e.bus == nil {
		e.bus = events.Default()
	}
	if e.namer == nil {
		e.namer = naming.New(e.fs)
	}
	return e
}

// 🚀 Run consolidates cfg.Sources into cfg.Destination.
//
// recorder, when non-nil, is subscribed to the engine's bus for the
// duration of the run and cleared on every return path. On failure an
// error event is emitted before returning, and the returned Result holds
// the counts reached so far.
func (e *Engine) Run(ctx context.Context, cfg *config.Config, recorder events.Subscriber) (*Result, error) {
	if recorder != nil {
		e.bus.Subscribe(recorder)
		defer e.bus.Subscribe(nil)
	}

	if e.logger == nil {
		scoped := *e
		scoped.logger = log.FromContext(ctx)
		e = &scoped
	}

	res := &Result{}
	if err := e.run(ctx, cfg, res); err != nil {
		e.fail(ctx, err)
		return res, err
	}
	return res, nil
}

func (e *Engine) fail(ctx context.Context, cause error) {
	err := e.bus.Emit(ctx, events.KindError, events.Fields{
		"action": ActionName,
		"error":  cause.Error(),
	})
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("reporting failed run")
	}
	e.logger.Errorf("%s failed: %v", ActionName, cause)
}

func (e *Engine) run(ctx context.Context, cfg *config.Config, res *Result) error {
	zlog := zerolog.Ctx(ctx)

	if cfg == nil {
		return errors.Errorf("validating config: %w: config is required", config.ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return errors.Errorf("validating config: %w", err)
	}

	e.logger.StartRun(ctx, log.RunOperation{
		Action:      ActionName,
		Sources:     cfg.Sources,
		Destination: cfg.Destination,
		Scheme:      string(cfg.RenameScheme),
		ConfigPath:  cfg.Location(),
	})

	if err := e.fs.MkdirAll(cfg.Destination, 0o755); err != nil {
		return errors.Errorf("creating destination %s: %w", cfg.Destination, err)
	}

	err := e.bus.Emit(ctx, events.KindStart, events.Fields{
		"action":      ActionName,
		"sources":     len(cfg.Sources),
		"destination": cfg.Destination,
		"config_hash": cfg.Hash(),
	})
	if err != nil {
		return err
	}

	seen := NewSeenSet()
	for _, src := range cfg.Sources {
		if err := ctx.Err(); err != nil {
			return errors.Errorf("collect cancelled: %w", err)
		}
		if err := e.scanSource(ctx, cfg, src, seen, res); err != nil {
			return err
		}
	}

	if cfg.DeleteMissingInSources {
		if err := e.mirror(ctx, cfg.Destination, seen, res); err != nil {
			return err
		}
	}

	zlog.Debug().Interface("result", res).Msg("collect finished")

	e.logger.EndRun(ctx, log.Totals{
		Total:   res.Total,
		Copied:  res.Copied,
		Renamed: res.Renamed,
		Skipped: res.Skipped,
		Deleted: res.Deleted,
	})

	fields := res.Fields()
	fields["action"] = ActionName
	fields["destination"] = cfg.Destination
	return e.bus.Emit(ctx, events.KindComplete, fields)
}

// 📂 scanSource considers the direct regular children of one source
// directory in name order. Symlinks count when their target is a regular
// file.
func (e *Engine) scanSource(ctx context.Context, cfg *config.Config, src string, seen SeenSet, res *Result) error {
	zlog := zerolog.Ctx(ctx)

	info, err := e.fs.Stat(src)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		e.logger.Warningf("Source not found: %s", src)
		return e.bus.Emit(ctx, events.KindMissing, events.Fields{"source": src})
	}
	if err != nil {
		return errors.Errorf("reading source %s: %w", src, err)
	}

	entries, err := afero.ReadDir(e.fs, src)
	if err != nil {
		return errors.Errorf("listing source %s: %w", src, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		srcPath := filepath.Join(src, name)

		ok, err := e.isFile(entry, srcPath)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		stem, ext := naming.Split(name)
		if stem == "" || !cfg.Accepts(ext) {
			continue
		}
		if cfg.Ignored(name) {
			zlog.Debug().Str("file", name).Msg("ignored by pattern")
			continue
		}

		if err := ctx.Err(); err != nil {
			return errors.Errorf("collect cancelled: %w", err)
		}

		if cfg.VerifyImageContent {
			ok, mime, err := sniffImage(e.fs, srcPath)
			if err != nil {
				return err
			}
			if !ok {
				res.Rejected++
				e.logger.LogFileOperation(ctx, log.FileOperation{Source: srcPath, Dest: name, Action: "rejected", Detail: mime})
				if err := e.bus.Emit(ctx, events.KindRejected, events.Fields{"file": srcPath, "mime": mime}); err != nil {
					return err
				}
				continue
			}
		}

		if err := e.collectFile(ctx, cfg, srcPath, stem+ext, seen, res); err != nil {
			return err
		}
	}

	return nil
}

// 🎯 collectFile decides and carries out the action for one source file.
func (e *Engine) collectFile(ctx context.Context, cfg *config.Config, srcPath, candidate string, seen SeenSet, res *Result) error {
	view := fsView{fs: e.fs, dir: cfg.Destination, src: srcPath}
	policy := Policy{
		RenameOnConflict: cfg.RenameOnlyOnConflict,
		Alternatives: func() (iter.Seq[string], error) {
			return e.namer.Candidates(cfg.RenameScheme, srcPath)
		},
	}

	for attempt := 1; ; attempt++ {
		dec, err := Decide(view, candidate, policy)
		if err != nil {
			return errors.Errorf("deciding %s: %w", srcPath, err)
		}

		out, err := e.apply(cfg.Destination, srcPath, dec)
		if errors.Is(err, errNameTaken) && attempt < maxClaimAttempts {
			zerolog.Ctx(ctx).Debug().Str("file", srcPath).Str("name", dec.Name).Msg("name claimed concurrently, deciding again")
			continue
		}
		if err != nil {
			return errors.Errorf("%s %s: %w", dec.Action, srcPath, err)
		}

		seen.Add(dec.Name)
		res.record(dec.Action)
		return e.report(ctx, srcPath, candidate, dec, out)
	}
}

func (e *Engine) apply(destDir, srcPath string, dec Decision) (copied, error) {
	if dec.Action == ActionSkipped {
		return copied{}, nil
	}
	return copyFile(e.fs, srcPath, filepath.Join(destDir, dec.Name), dec.Replace)
}

func (e *Engine) report(ctx context.Context, srcPath, candidate string, dec Decision, out copied) error {
	op := log.FileOperation{Source: srcPath, Dest: dec.Name, Action: dec.Action.String()}
	fields := events.Fields{"file": srcPath}

	switch dec.Action {
	case ActionRenamed:
		fields["new_name"] = dec.Name
		op.Detail = "from " + candidate
	default:
		fields["dest"] = dec.Name
	}
	if dec.Action != ActionSkipped {
		fields["bytes"] = out.Bytes
		fields["xxhash"] = out.Digest
	}

	e.logger.LogFileOperation(ctx, op)
	return e.bus.Emit(ctx, dec.Action.Kind(), fields)
}

// isFile reports whether a directory entry is a regular file or a symlink
// to one. Dangling links are not files.
func (e *Engine) isFile(entry fs.FileInfo, path string) (bool, error) {
	mode := entry.Mode()
	if mode.IsRegular() {
		return true, nil
	}
	if mode&fs.ModeSymlink == 0 {
		return false, nil
	}

	info, err := e.fs.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, errors.Errorf("resolving %s: %w", path, err)
	}
	return info.Mode().IsRegular(), nil
}

// 🧹 mirror removes top-level destination files no source produced.
func (e *Engine) mirror(ctx context.Context, destDir string, seen SeenSet, res *Result) error {
	entries, err := afero.ReadDir(e.fs, destDir)
	if err != nil {
		return errors.Errorf("listing destination %s: %w", destDir, err)
	}

	for _, entry := range entries {
		if seen.Has(entry.Name()) {
			continue
		}

		path := filepath.Join(destDir, entry.Name())
		ok, err := e.isFile(entry, path)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		if err := e.fs.Remove(path); err != nil {
			return errors.Errorf("deleting %s: %w", path, err)
		}
		res.Deleted++

		e.logger.LogFileOperation(ctx, log.FileOperation{Dest: entry.Name(), Action: "deleted"})
		if err := e.bus.Emit(ctx, events.KindDeleted, events.Fields{"file": path}); err != nil {
			return err
		}
	}

	return nil
}
