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

package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/cmd/imgcollect/opts"
	"github.com/walteh/imgcollect/pkg/activity"
	"github.com/walteh/imgcollect/pkg/config"
	"github.com/walteh/imgcollect/pkg/consolidate"
	"github.com/walteh/imgcollect/pkg/events"
	"github.com/walteh/imgcollect/pkg/operation"
	"github.com/walteh/imgcollect/pkg/status"
)

// NewCollectCommand creates the collect command
func NewCollectCommand(rootOpts *opts.RootOpts) *cobra.Command {
	var (
		configFile  string
		destination string
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Merge source directories into the destination",
		Long: `Collect reads a consolidation config and merges every source directory into
the destination. It will:
1. Copy images the destination does not have yet
2. Skip images already present with identical bytes
3. Rename or overwrite on a name collision, as configured
4. Optionally delete destination files no source produced`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "collect").Logger().WithContext(ctx)

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return errors.Errorf("loading config: %w", err)
			}

			if destination != "" {
				cfg.Destination = destination
			}
			abs, err := filepath.Abs(cfg.Destination)
			if err != nil {
				return errors.Errorf("getting absolute destination path: %w", err)
			}
			cfg.Destination = abs

			if err := checkActivityPath(cfg, rootOpts.ActivityPath()); err != nil {
				return err
			}

			var store *activity.Store
			if path := rootOpts.ActivityPath(); path != "" {
				store, err = activity.Open(ctx, path)
				if err != nil {
					return errors.Errorf("opening activity log: %w", err)
				}
				defer store.Close()
			}

			tracker := status.NewTracker()
			op := &operation.CollectOperation{Options: operation.Options{
				Config:   cfg,
				DataDir:  rootOpts.DataDir,
				Activity: store,
				Tracker:  tracker,
				Bus:      events.Default(),
				Console:  cmd.ErrOrStderr(),
				Level:    rootOpts.Level(),
			}}

			// sync: the engine checks ctx between files
			runErr := operation.NewRunner(false).Run(ctx, op)

			reported := false
			if op.Outcome != nil {
				if job, err := tracker.Get(op.Outcome.JobID); err == nil {
					printJob(cmd.ErrOrStderr(), tracker, job)
					reported = true
				}
			}
			if runErr != nil {
				if !reported {
					fmt.Fprintln(cmd.ErrOrStderr(), status.NewDefaultFormatter().FormatError(runErr))
				}
				return runErr
			}

			return renderSummary(cmd.ErrOrStderr(), cfg, op.Outcome)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "collect.yaml", "consolidation config file (.json, .yaml, .hcl)")
	cmd.Flags().StringVar(&destination, "destination", "", "override the configured destination")

	return cmd
}

// checkActivityPath refuses a mirrored destination that would hold the
// activity database, since mirroring deletes every top-level file no source
// produced.
func checkActivityPath(cfg *config.Config, dbPath string) error {
	if dbPath == "" || !cfg.DeleteMissingInSources {
		return nil
	}
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return errors.Errorf("getting absolute activity path: %w", err)
	}
	if filepath.Dir(abs) == cfg.Destination {
		return errors.Errorf("activity database %s is inside the mirrored destination %s; move --data-dir or --activity-db, or pass --no-activity", abs, cfg.Destination)
	}
	return nil
}

func printJob(w io.Writer, tracker *status.Tracker, job status.Job) {
	printer := pterm.Success
	if job.State == status.StateFailed {
		printer = pterm.Error
	}
	printer.WithWriter(w).Println(tracker.Format(job))
}

// renderSummary prints the result counts as a table
func renderSummary(w io.Writer, cfg *config.Config, out *operation.Outcome) error {
	res := out.Result
	if res == nil {
		res = &consolidate.Result{}
	}

	data := pterm.TableData{
		{"total", "copied", "renamed", "skipped", "deleted"},
		{
			strconv.Itoa(res.Total),
			strconv.Itoa(res.Copied),
			strconv.Itoa(res.Renamed),
			strconv.Itoa(res.Skipped),
			strconv.Itoa(res.Deleted),
		},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).WithWriter(w).Render(); err != nil {
		return errors.Errorf("rendering summary: %w", err)
	}

	fmt.Fprintf(w, "destination: %s\n", cfg.Destination)
	if res.Rejected > 0 {
		fmt.Fprintf(w, "rejected:    %d\n", res.Rejected)
	}
	if out.LogPath != "" {
		fmt.Fprintf(w, "run log:     %s\n", out.LogPath)
	}
	return nil
}
