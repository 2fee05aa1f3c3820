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

// Package config handles the YAML config file of dicomdump.
//
// All values are optional and act as defaults; command line flags override them.
package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/go-dicom-stream/dicom"
)

// Config represents a dicomdump.yaml configuration file.
type Config struct {
	Decode     DecodeConfig      `yaml:"decode"`
	Dictionary map[string]string `yaml:"dictionary"`
	Log        LogConfig         `yaml:"log"`
	S3         S3Config          `yaml:"s3"`
	Output     OutputConfig      `yaml:"output"`
}

// DecodeConfig mirrors the decoder options.
type DecodeConfig struct {
	// NoFileHeader decodes inputs as bare data sets.
	NoFileHeader    bool   `yaml:"no_file_header"`
	DefaultSyntax   string `yaml:"default_syntax"`
	StreamThreshold *Size  `yaml:"stream_threshold,omitempty"`
	HighWaterMark   *Size  `yaml:"high_water_mark,omitempty"`
	ReadSize        *Size  `yaml:"read_size,omitempty"`
	// Encapsulation is fragments or nested.
	Encapsulation string `yaml:"encapsulation"`
	UnknownVRAsUN bool   `yaml:"unknown_vr_as_un"`
}

// LogConfig holds logging defaults.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// S3Config holds the settings for s3:// inputs.
type S3Config struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	// PathStyle forces path-style addressing, required by most S3-compatible providers.
	PathStyle bool `yaml:"path_style"`
}

// OutputConfig holds rendering defaults.
type OutputConfig struct {
	Format  string `yaml:"format"`
	NoColor bool   `yaml:"no_color"`
}

// Size is a byte count written as a plain number or with a KiB, MiB or GiB suffix.
type Size struct {
	Bytes int64
}

var sizeUnits = []struct {
	suffix string
	factor int64
}{
	{"GiB", 1 << 30},
	{"MiB", 1 << 20},
	{"KiB", 1 << 10},
	{"B", 1},
}

// ParseSize parses sizes like "512", "32KiB" or "4MiB".
func ParseSize(s string) (Size, error) {
	s = strings.TrimSpace(s)
	factor := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			factor = u.factor
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return Size{}, fmt.Errorf("invalid size %q", s)
	}
	return Size{n * factor}, nil
}

// UnmarshalYAML parses a size like "4MiB".
func (s *Size) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseSize(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DictionaryEntries parses the dictionary section, keyed by "gggg,eeee" tags.
func (c *Config) DictionaryEntries() (map[dicom.DataElementTag]dicom.VR, error) {
	if len(c.Dictionary) == 0 {
		return nil, nil
	}

	// sorted for deterministic error reporting
	keys := make([]string, 0, len(c.Dictionary))
	for k := range c.Dictionary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make(map[dicom.DataElementTag]dicom.VR, len(keys))
	for _, k := range keys {
		tag, err := ParseTag(k)
		if err != nil {
			return nil, err
		}
		vr, err := dicom.LookupVR(strings.ToUpper(c.Dictionary[k]))
		if err != nil {
			return nil, fmt.Errorf("dictionary entry %s: %w", k, err)
		}
		entries[tag] = vr
	}
	return entries, nil
}

// ParseTag parses "gggg,eeee", optionally in parentheses, or "ggggeeee".
func ParseTag(s string) (dicom.DataElementTag, error) {
	t := strings.Trim(strings.TrimSpace(s), "()")
	t = strings.ReplaceAll(t, ",", "")
	if len(t) != 8 {
		return 0, fmt.Errorf("invalid tag %q", s)
	}
	v, err := strconv.ParseUint(t, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tag %q", s)
	}
	return dicom.DataElementTag(v), nil
}

// DecodeOptions converts the decode and dictionary sections into decoder options.
func (c *Config) DecodeOptions(logger *zap.Logger) ([]dicom.DecodeOption, error) {
	opts := []dicom.DecodeOption{dicom.WithLogger(logger)}

	d := c.Decode
	if d.NoFileHeader {
		opts = append(opts, dicom.WithoutFileHeader())
	}
	if d.DefaultSyntax != "" {
		syntax, err := dicom.ParseTransferSyntax(d.DefaultSyntax)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dicom.WithDefaultSyntax(syntax))
	}
	if d.StreamThreshold != nil {
		opts = append(opts, dicom.WithStreamThreshold(d.StreamThreshold.Bytes))
	}
	if d.HighWaterMark != nil {
		opts = append(opts, dicom.WithHighWaterMark(d.HighWaterMark.Bytes))
	}
	if d.ReadSize != nil {
		opts = append(opts, dicom.WithReadSize(int(d.ReadSize.Bytes)))
	}
	switch strings.ToLower(d.Encapsulation) {
	case "", "fragments":
	case "nested":
		opts = append(opts, dicom.WithEncapsulation(dicom.EncapsulateNested))
	default:
		return nil, fmt.Errorf("invalid encapsulation: %q (must be fragments or nested)", d.Encapsulation)
	}
	if d.UnknownVRAsUN {
		opts = append(opts, dicom.WithUnknownVRAsUN())
	}

	entries, err := c.DictionaryEntries()
	if err != nil {
		return nil, err
	}
	if entries != nil {
		opts = append(opts, dicom.WithDictionary(dicom.MapDictionary{Base: dicom.StandardDictionary, VRs: entries}))
	}
	return opts, nil
}
