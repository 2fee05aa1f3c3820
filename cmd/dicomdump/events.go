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
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/GoogleCloudPlatform/go-dicom-stream/dicom"
	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/render"
)

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:      "events",
		Usage:     "Print the decoder events of a file as they are produced",
		ArgsUsage: "<location>",
		Flags: append(decodeFlags(),
			formatFlag,
			noColorFlag,
			&cli.BoolFlag{
				Name:  "data",
				Usage: "Include payload bytes in json, yaml and msgpack output",
			},
		),
		Action: eventsAction,
	}
}

func eventsAction(c *cli.Context) error {
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
	var opts []render.EventWriterOption
	if e.noColor(c) {
		opts = append(opts, render.WithoutColor())
	}
	if c.Bool("data") {
		opts = append(opts, render.WithPayloadData())
	}
	ew, err := render.NewEventWriter(c.App.Writer, format, opts...)
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}

	r, err := e.opener.Open(c.Context, loc)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	defer r.Close()

	decodeErr := dicom.Decode(c.Context, r, ew, e.decodeOpts...)
	if err := ew.Close(); err != nil {
		return cli.Exit(fmt.Sprintf("writing events: %v", err), exitFailure)
	}
	if decodeErr != nil {
		return cli.Exit(fmt.Sprintf("decoding %s: %v", loc, decodeErr), exitFailure)
	}
	return nil
}
