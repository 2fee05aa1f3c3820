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


// Package main provides the dicomdump CLI.
//
// dicomdump feeds DICOM files through the push decoder and prints what it sees.
//
// Usage:
//
//	dicomdump [--config dicomdump.yaml] <command> [options] <location>
//
// Locations are file paths, - for stdin/stdout, or s3://bucket/key.
//
// Exit codes:
//   - 0: success
//   - 1: decoding or encoding failed
//   - 2: invalid usage or configuration
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// version is set via ldflags at build time.
var version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:           "dicomdump",
		Usage:          "Inspect and rewrite DICOM files with the streaming decoder",
		Version:        version,
		Flags:          globalFlags(),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			eventsCommand(),
			treeCommand(),
			rewriteCommand(),
			viewCommand(),
		},
	}
}

// exitErrHandler handles errors from the CLI, preserving exit codes from cli.Exit().
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
