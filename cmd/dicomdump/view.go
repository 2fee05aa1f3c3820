// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"github.com/urfave/cli/v2"

	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/render"
	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/tui"
)

func viewCommand() *cli.Command {
	return &cli.Command{
		Name:      "view",
		Usage:     "Browse the data set of a file in an interactive viewer",
		ArgsUsage: "<location>",
		Flags:     append(decodeFlags(), bulkFlag, dropGroupLengthsFlag),
		Action:    viewAction,
	}
}

func viewAction(c *cli.Context) error {
	loc, err := location(c)
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	ds, err := e.parse(c, loc, treeOptions(c)...)
	if err != nil {
		return err
	}
	if err := tui.Run(loc, render.DumpLines(ds)); err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	return nil
}
