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
	"bytes"
	"encoding/binary"
	"errors"
	"strings"

	"go.uber.org/zap"
)

const (
	preambleLength = 128
	dicmPrefix     = "DICM"
)

// ErrClosed is returned by Write after Close.
var ErrClosed = errors.New("dicom: write to closed decoder")

type decoderState int

const (
	statePreamble decoderState = iota
	statePrefix
	stateMetaInfo
	stateDataset
	stateDone
	stateError
)

func (s decoderState) String() string {
	switch s {
	case statePreamble:
		return "preamble"
	case statePrefix:
		return "prefix"
	case stateMetaInfo:
		return "meta"
	case stateDataset:
		return "dataset"
	case stateDone:
		return "done"
	}
	return "error"
}

// Decoder is a push based DICOM decoder. Input is written in chunks of any size, and the decoder
// reports what it recognizes to a Handler as soon as the bytes for it are available. The events
// produced do not depend on how the input is chunked.
//
// A Decoder is not safe for concurrent use; all methods, and the Handler callbacks they trigger,
// run on the caller's goroutine.
type Decoder struct {
	cfg     decodeConfig
	handler Handler
	log     *zap.Logger

	cursor *streamCursor
	stack  nestingStack
	elem   elementReader

	state decoderState

	// syntax frames the elements being read. staged is the syntax named by the meta information,
	// installed when the meta group closes.
	syntax TransferSyntax
	staged *TransferSyntax
	meta   *group

	input bool
	err   error
}

// NewDecoder returns a Decoder reporting to h.
func NewDecoder(h Handler, opts ...DecodeOption) *Decoder {
	cfg := newDecodeConfig(opts)
	d := &Decoder{
		cfg:     cfg,
		handler: h,
		log:     cfg.logger,
		syntax:  cfg.defaultSyntax,
	}
	d.cursor = newStreamCursor(cfg.highWaterMark, cfg.logger, d.onError)

	if !cfg.fileHeader {
		d.state = stateDataset
		d.readElement(true)
		return d
	}
	// the file header is always explicit VR little endian
	d.syntax = ExplicitVRLittleEndian
	d.state = statePreamble
	d.cursor.request(preambleLength, d.onPreamble)
	return d
}

// SetSource registers the producer to notify for flow control.
func (d *Decoder) SetSource(s Source) {
	d.cursor.source = s
}

// Write pushes the next chunk of input. p is copied. The returned error is the fatal decoding
// error, if any; input written after it is ignored.
func (d *Decoder) Write(p []byte) (int, error) {
	if d.input {
		return 0, ErrClosed
	}
	if d.err != nil {
		return 0, d.err
	}
	d.cursor.push(append([]byte(nil), p...))
	return len(p), d.err
}

// Close marks the end of input and returns the fatal decoding error, if any. A session that ends
// inside an element or with open groups fails with PrematureEnd.
func (d *Decoder) Close() error {
	d.input = true
	d.cursor.end()
	return d.err
}

// Abort stops the session with an UpstreamError wrapping err, unless it already ended.
func (d *Decoder) Abort(err error) {
	d.cursor.fail(&DecodeError{Kind: UpstreamError, Offset: d.cursor.offset(), Msg: "byte source failed", Err: err})
}

// Err returns the fatal error of the session, nil if there is none (yet).
func (d *Decoder) Err() error {
	return d.err
}

// Finished reports whether the session reached a terminal state, successfully or not.
func (d *Decoder) Finished() bool {
	return d.state == stateDone || d.state == stateError
}

// Offset returns the number of input bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.cursor.offset()
}

// Syntax returns the transfer syntax currently used to frame elements.
func (d *Decoder) Syntax() TransferSyntax {
	return d.syntax
}

func (d *Decoder) onPreamble([]byte) {
	d.state = statePrefix
	d.cursor.request(int64(len(dicmPrefix)), d.onPrefix)
}

func (d *Decoder) onPrefix(b []byte) {
	if !bytes.Equal(b, []byte(dicmPrefix)) {
		d.fail(newDecodeError(MalformedMagic, preambleLength, "got prefix %q, want %q", b, dicmPrefix))
		return
	}
	d.state = stateMetaInfo
	d.readElement(false)
}

// onMetaElement inspects the elements of the meta group as they complete. The first one must be
// the group length, which bounds the group.
func (d *Decoder) onMetaElement(e *DataElement) {
	if d.meta == nil {
		if e.Tag != FileMetaInformationGroupLengthTag || len(e.Value) != 4 {
			d.fail(newDecodeError(MalformedMagic, e.Offset,
				"file meta information starts with %v, want %v with a 4 byte value", e, FileMetaInformationGroupLengthTag))
			return
		}
		length := binary.LittleEndian.Uint32(e.Value)
		d.meta = d.stack.enter(MetaGroup, e, length, d.cursor.offset(), d.onGroupEnter, d.onMetaExit)
		return
	}

	if e.Tag != TransferSyntaxUIDTag {
		return
	}
	uid := strings.TrimRight(string(e.Value), "\x00 ")
	syntax, ok := d.cfg.dictionary.TransferSyntax(uid)
	if !ok {
		d.fail(newDecodeError(UnsupportedSyntax, e.Offset, "transfer syntax %q", uid))
		return
	}
	d.log.Debug("staging transfer syntax", zap.String("uid", uid), zap.Stringer("syntax", syntax))
	d.staged = &syntax
}

func (d *Decoder) onMetaExit(g *group) {
	d.onGroupExit(g)
	if d.staged != nil {
		d.syntax = *d.staged
	} else {
		d.syntax = d.cfg.defaultSyntax
		d.log.Warn("file meta information has no transfer syntax",
			zap.Stringer("default", d.syntax))
	}
	d.staged = nil
	d.state = stateDataset
}

// next continues with the element following the one just completed.
func (d *Decoder) next() {
	switch d.state {
	case stateMetaInfo:
		d.readElement(false)
	case stateDataset:
		d.readElement(true)
	}
}

func (d *Decoder) emit(ev Event) {
	if d.cursor.stopped() {
		return
	}
	d.handler.HandleEvent(ev)
}

func (d *Decoder) finish() {
	d.state = stateDone
	d.emit(Event{Kind: StreamEnd, Offset: d.cursor.offset()})
	d.cursor.close()
	d.log.Debug("decoding finished", zap.Int64("bytes", d.cursor.offset()))
}

// fail terminates the session with err. Later input is ignored and the error is reported once.
func (d *Decoder) fail(err error) {
	d.cursor.fail(err)
}

// onError observes the cursor's terminal error.
func (d *Decoder) onError(err error) {
	d.err = err
	d.state = stateError
	d.log.Warn("decoding failed",
		zap.Error(err),
		zap.Stringer("step", d.elem.step),
		zap.Int("depth", d.stack.depth()))
	d.handler.HandleError(err)
}
