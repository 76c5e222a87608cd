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

package main

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/imgcollect/cmd/imgcollect/commands"
	"github.com/walteh/imgcollect/cmd/imgcollect/opts"
)

// NewRootCmd builds the imgcollect command tree.
func NewRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "imgcollect",
		Short: "Merge images from many source directories into one dataset",
		Long: `imgcollect consolidates images from any number of source directories into
one destination, skipping byte-identical files, resolving name collisions
with a configurable naming scheme and optionally mirroring the destination
to the union of the sources.

The machine-readable event stream goes to stdout; progress for people goes
to stderr.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional
			_ = godotenv.Load()
			rootOpts.ApplyEnv(cmd.Flags().Changed("data-dir"))
			cmd.SetContext(setupLogging(rootOpts.Debug, os.Stderr).WithContext(cmd.Context()))
		},
	}

	addRootFlags(cmd, rootOpts)

	cmd.AddCommand(commands.NewCollectCommand(rootOpts))
	cmd.AddCommand(commands.NewActivityCommand(rootOpts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&o.DataDir, "data-dir", opts.DefaultDataDir, "directory for run logs and the activity database (env DATA_DIR)")
	cmd.PersistentFlags().StringVar(&o.ActivityDB, "activity-db", "", "activity database path (default {data-dir}/activity.db)")
	cmd.PersistentFlags().BoolVar(&o.NoActivity, "no-activity", false, "do not record activity")
}

// setupLogging builds the diagnostic logger carried on the context
func setupLogging(debug bool, w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}
