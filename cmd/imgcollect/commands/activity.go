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
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/imgcollect/cmd/imgcollect/opts"
	"github.com/walteh/imgcollect/pkg/activity"
)

// NewActivityCommand creates the activity command
func NewActivityCommand(rootOpts *opts.RootOpts) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recently recorded activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := rootOpts.ActivityPath()
			if path == "" {
				return errors.New("activity recording is disabled")
			}

			store, err := activity.Open(ctx, path)
			if err != nil {
				return errors.Errorf("opening activity log: %w", err)
			}
			defer store.Close()

			rows, err := store.Recent(ctx, limit)
			if err != nil {
				return errors.Errorf("reading activity: %w", err)
			}

			if len(rows) == 0 {
				pterm.Info.WithWriter(cmd.OutOrStdout()).Println("no activity recorded yet")
				return nil
			}
			return renderActivity(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rows to show")

	return cmd
}

func renderActivity(w io.Writer, rows []activity.Activity) error {
	data := pterm.TableData{{"id", "when", "action", "status", "details"}}
	for _, row := range rows {
		data = append(data, []string{
			strconv.FormatInt(row.ID, 10),
			row.CreatedAt.Local().Format(time.DateTime),
			row.Action,
			row.Status,
			row.Details,
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render(); err != nil {
		return errors.Errorf("rendering activity: %w", err)
	}
	return nil
}
