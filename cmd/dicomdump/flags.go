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

import "github.com/urfave/cli/v2"

// Exit codes.
const (
	exitFailure = 1
	exitUsage   = 2
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a dicomdump.yaml config file",
			EnvVars: []string{"DICOMDUMP_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: console, json",
		},
	}
}

// Shared flags of the commands that decode an input.
var (
	noFileHeaderFlag = &cli.BoolFlag{
		Name:  "no-file-header",
		Usage: "Decode the input as a bare data set, without preamble and meta information",
	}

	defaultSyntaxFlag = &cli.StringFlag{
		Name:  "default-syntax",
		Usage: "Transfer syntax of bare data sets, e.g. implicit-little",
	}

	streamThresholdFlag = &cli.StringFlag{
		Name:  "stream-threshold",
		Usage: "Deliver values longer than this size in chunks, e.g. 64KiB (0 disables)",
	}

	encapsulationFlag = &cli.StringFlag{
		Name:  "encapsulation",
		Usage: "Items of encapsulated values: fragments or nested",
	}

	unknownVRFlag = &cli.BoolFlag{
		Name:  "unknown-vr-as-un",
		Usage: "Read tags missing from the dictionary as UN in implicit VR syntaxes",
	}
)

// Shared rendering flags.
var (
	// formatFlag selects the output format.
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, yaml, msgpack, table",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}
)

func decodeFlags() []cli.Flag {
	return []cli.Flag{
		noFileHeaderFlag,
		defaultSyntaxFlag,
		streamThresholdFlag,
		encapsulationFlag,
		unknownVRFlag,
	}
}
