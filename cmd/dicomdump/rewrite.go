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
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/go-dicom-stream/dicom"
)

func rewriteCommand() *cli.Command {
	return &cli.Command{
		Name:      "rewrite",
		Usage:     "Decode a file and encode it again in another transfer syntax",
		ArgsUsage: "<input> <output>",
		Flags: append(decodeFlags(),
			&cli.StringFlag{
				Name:     "syntax",
				Usage:    "Transfer syntax of the output: explicit-little, implicit-little, explicit-big",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "bare",
				Usage: "Write the data set without preamble and meta information",
			},
			dropGroupLengthsFlag,
		),
		Action: rewriteAction,
	}
}

func rewriteAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("rewrite: input and output locations required", exitUsage)
	}
	in, out := c.Args().Get(0), c.Args().Get(1)

	syntax, err := dicom.ParseTransferSyntax(c.String("syntax"))
	if err != nil {
		return cli.Exit(err.Error(), exitUsage)
	}
	e, err := setup(c)
	if err != nil {
		return err
	}
	defer e.log.Sync()

	var opts []dicom.ParseOption
	if c.Bool(dropGroupLengthsFlag.Name) {
		opts = append(opts, dicom.DropGroupLengths)
	}
	ds, err := e.parse(c, in, opts...)
	if err != nil {
		return err
	}

	w, err := e.opener.Create(c.Context, out)
	if err != nil {
		return cli.Exit(err.Error(), exitFailure)
	}
	enc := dicom.NewEncoder(w, syntax)
	if c.Bool("bare") {
		for _, a := range ds.MetaElements().Attributes() {
			ds.Delete(a.Tag)
		}
		err = enc.WriteDataSet(ds)
	} else {
		err = enc.WriteFile(ds)
	}
	if err != nil {
		w.Close()
		return cli.Exit(fmt.Sprintf("encoding %s: %v", out, err), exitFailure)
	}
	if err := w.Close(); err != nil {
		return cli.Exit(fmt.Sprintf("writing %s: %v", out, err), exitFailure)
	}
	e.log.Info("rewrote data set", zap.String("input", in), zap.String("output", out), zap.String("syntax", syntax.String()))
	return nil
}
