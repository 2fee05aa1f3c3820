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

package dicom

import (
	"go.uber.org/zap"
)

// EncapsulationPolicy selects how the items inside an encapsulated value are reported.
type EncapsulationPolicy int

const (
	// EncapsulateFragments reports each defined length item as an ElementStart followed by its
	// bytes as PayloadChunks, without opening an item group. Undefined length items still nest.
	EncapsulateFragments EncapsulationPolicy = iota
	// EncapsulateNested decodes items inside encapsulated values like sequence items.
	EncapsulateNested
)

const (
	defaultStreamThreshold = 1 << 20
	defaultHighWaterMark   = 4 << 20
	defaultReadSize        = 32 << 10
)

type decodeConfig struct {
	logger          *zap.Logger
	dictionary      Dictionary
	defaultSyntax   TransferSyntax
	fileHeader      bool
	streamThreshold int64
	highWaterMark   int64
	readSize        int
	encapsulation   EncapsulationPolicy
	unknownAsUN     bool
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	cfg := decodeConfig{
		logger:          zap.NewNop(),
		dictionary:      StandardDictionary,
		defaultSyntax:   ExplicitVRLittleEndian,
		fileHeader:      true,
		streamThreshold: defaultStreamThreshold,
		highWaterMark:   defaultHighWaterMark,
		readSize:        defaultReadSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// DecodeOption configures a Decoder.
type DecodeOption func(*decodeConfig)

// WithLogger sets the logger used for diagnostics. Decoding is silent by default.
func WithLogger(logger *zap.Logger) DecodeOption {
	return func(cfg *decodeConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithDictionary replaces StandardDictionary.
func WithDictionary(d Dictionary) DecodeOption {
	return func(cfg *decodeConfig) {
		if d != nil {
			cfg.dictionary = d
		}
	}
}

// WithDefaultSyntax sets the transfer syntax of the data set when the meta information does not
// name one, or when there is no file header at all.
func WithDefaultSyntax(s TransferSyntax) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.defaultSyntax = s
	}
}

// WithoutFileHeader decodes a bare data set: no preamble, prefix or meta information.
func WithoutFileHeader() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.fileHeader = false
	}
}

// WithStreamThreshold sets the value length above which values are delivered as a stream of
// PayloadChunks as the bytes arrive instead of a single chunk. 0 disables streaming.
func WithStreamThreshold(n int64) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.streamThreshold = n
	}
}

// WithHighWaterMark sets the number of buffered bytes at which the Source is paused. 0 disables
// flow control.
func WithHighWaterMark(n int64) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.highWaterMark = n
	}
}

// WithReadSize sets the size of the reads Decode issues on its io.Reader.
func WithReadSize(n int) DecodeOption {
	return func(cfg *decodeConfig) {
		if n > 0 {
			cfg.readSize = n
		}
	}
}

// WithEncapsulation sets the policy for items inside encapsulated values.
func WithEncapsulation(p EncapsulationPolicy) DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.encapsulation = p
	}
}

// WithUnknownVRAsUN decodes elements whose VR the dictionary does not know in implicit syntaxes
// as UN instead of failing with UnknownType.
func WithUnknownVRAsUN() DecodeOption {
	return func(cfg *decodeConfig) {
		cfg.unknownAsUN = true
	}
}
