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

	"github.com/GoogleCloudPlatform/go-dicom-stream/dicom"
	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/render"
)

var (
	bulkFlag = &cli.BoolFlag{
		Name:  "bulk",
		Usage: "Record the location of bulk data values instead of reading them",
	}

	dropGroupLengthsFlag = &cli.BoolFlag{
		Name:  "drop-group-lengths",
		Usage: "Leave out group length elements (gggg,0000)",
	}
)

func treeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Print the data set of a file",
		ArgsUsage: "<location>",
		Flags:     append(decodeFlags(), formatFlag, bulkFlag, dropGroupLengthsFlag),
		Action:    treeAction,
	}
}

// treeOptions returns the parse options selected by the tree flags.
func treeOptions(c *cli.Context) []dicom.ParseOption {
	var opts []dicom.ParseOption
	if c.Bool(bulkFlag.Name) {
		opts = append(opts, dicom.ReferenceBulkData(dicom.DefaultBulkDataDefinition))
	}
	if c.Bool(dropGroupLengthsFlag.Name) {
		opts = append(opts, dicom.DropGroupLengths)
	}
	return opts
}

func treeAction(c *cli.Context) error {
	loc, err := location(c)
	if err != nil {
		return err
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	format, err := e.outputFormat(c)
	if err != nil {
		return err
	}
	ds, err := e.parse(c, loc, treeOptions(c)...)
	if err != nil {
		return err
	}
	if err := render.RenderTree(c.App.Writer, format, ds); err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	return nil
}
