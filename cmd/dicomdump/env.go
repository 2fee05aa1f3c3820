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
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/go-dicom-stream/dicom"
	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/config"
	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/log"
	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/render"
	"github.com/GoogleCloudPlatform/go-dicom-stream/internal/source"
)

// env is the state shared by the commands: the merged configuration and what is built from it.
type env struct {
	cfg        *config.Config
	log        *zap.Logger
	opener     *source.Opener
	decodeOpts []dicom.DecodeOption
}

// setup loads the config file, applies the command line flags on top of it and builds the logger,
// the opener and the decoder options.
func setup(c *cli.Context) (*env, error) {
	cfg := &config.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, cli.Exit(err.Error(), exitUsage)
		}
		cfg = loaded
	}
	if v := c.String("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		cfg.Log.Format = v
	}
	if err := applyDecodeFlags(c, cfg); err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}

	logger, err := log.New(log.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}
	opts, err := cfg.DecodeOptions(logger)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitUsage)
	}

	s3cfg := source.S3Config{Region: cfg.S3.Region, Endpoint: cfg.S3.Endpoint, UsePathStyle: cfg.S3.PathStyle}
	return &env{
		cfg:        cfg,
		log:        logger,
		opener:     source.NewOpener(s3cfg, logger),
		decodeOpts: opts,
	}, nil
}

// applyDecodeFlags overrides the decode section of cfg with the flags set on c.
func applyDecodeFlags(c *cli.Context, cfg *config.Config) error {
	d := &cfg.Decode
	if c.Bool(noFileHeaderFlag.Name) {
		d.NoFileHeader = true
	}
	if v := c.String(defaultSyntaxFlag.Name); v != "" {
		d.DefaultSyntax = v
	}
	if v := c.String(streamThresholdFlag.Name); v != "" {
		size, err := config.ParseSize(v)
		if err != nil {
			return fmt.Errorf("--%s: %w", streamThresholdFlag.Name, err)
		}
		d.StreamThreshold = &size
	}
	if v := c.String(encapsulationFlag.Name); v != "" {
		d.Encapsulation = v
	}
	if c.Bool(unknownVRFlag.Name) {
		d.UnknownVRAsUN = true
	}
	return nil
}

// outputFormat resolves the format flag, falling back to the config file and then to the
// terminal based default.
func (e *env) outputFormat(c *cli.Context) (render.Format, error) {
	s := c.String(formatFlag.Name)
	if s == "" {
		s = e.cfg.Output.Format
	}
	format, err := render.ParseFormat(s)
	if err != nil {
		return "", cli.Exit(err.Error(), exitUsage)
	}
	if format == "" {
		format = render.DefaultFormat(os.Stdout)
	}
	return format, nil
}

func (e *env) noColor(c *cli.Context) bool {
	return c.Bool(noColorFlag.Name) || e.cfg.Output.NoColor
}

// location returns the single positional argument of c.
func location(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("%s: exactly one location required", c.Command.Name), exitUsage)
	}
	return c.Args().First(), nil
}

// parse decodes the data set at loc into a tree.
func (e *env) parse(c *cli.Context, loc string, opts ...dicom.ParseOption) (*dicom.DataSet, error) {
	r, err := e.opener.Open(c.Context, loc)
	if err != nil {
		return nil, cli.Exit(err.Error(), exitFailure)
	}
	defer r.Close()

	opts = append([]dicom.ParseOption{dicom.WithDecodeOptions(e.decodeOpts...)}, opts...)
	ds, err := dicom.Parse(c.Context, r, opts...)
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("decoding %s: %v", loc, err), exitFailure)
	}
	return ds, nil
}
