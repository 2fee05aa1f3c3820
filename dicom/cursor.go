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

// Source is the producer of the bytes pushed into a Decoder. Pause and Resume are advisory: the
// decoder calls Pause when a chunk leaves more than the high water mark buffered, and Resume when
// the next pending read cannot be served from the buffered bytes.
type Source interface {
	Pause()
	Resume()
}

// readRequest is a pending read on the streamCursor.
type readRequest struct {
	// remaining is the number of bytes still to be delivered
	remaining int64

	// stream requests deliver their bytes in pieces as they arrive through chunk and signal the
	// end with done. Atomic requests wait for all bytes and deliver them once through atomic.
	stream bool
	atomic func([]byte)
	chunk  func([]byte)
	done   func()

	// eof, when set, is called instead of failing the session when input ends before the request
	// could be served. buffered is the number of bytes that were still available.
	eof func(buffered int64)
}

// streamCursor buffers incoming chunks and serves read requests strictly in the order they were
// made. It counts how many bytes have been consumed so far, like the countReader of a pull parser,
// but inverts control: requests that cannot be served yet stay queued until more input arrives.
type streamCursor struct {
	// chunks[0][pos:] is the next unread byte
	chunks   [][]byte
	pos      int
	buffered int64
	position int64

	requests []*readRequest
	serving  bool

	eof    bool
	closed bool
	err    error

	// onError is the single observer of the fatal error
	onError func(error)

	source    Source
	paused    bool
	highWater int64

	log *zap.Logger
}

func newStreamCursor(highWater int64, log *zap.Logger, onError func(error)) *streamCursor {
	return &streamCursor{highWater: highWater, log: log, onError: onError}
}

// offset is the number of bytes consumed from the stream so far.
func (c *streamCursor) offset() int64 {
	return c.position
}

// stopped is true once the cursor has failed or was closed. All operations are no-ops then.
func (c *streamCursor) stopped() bool {
	return c.err != nil || c.closed
}

// request queues an atomic read of n contiguous bytes.
func (c *streamCursor) request(n int64, fn func([]byte)) {
	c.enqueue(&readRequest{remaining: n, atomic: fn})
}

// requestOrEOF is request with a handler for input ending before the bytes are available.
func (c *streamCursor) requestOrEOF(n int64, fn func([]byte), eof func(buffered int64)) {
	c.enqueue(&readRequest{remaining: n, atomic: fn, eof: eof})
}

// requestStream queues a read of n bytes delivered to chunk as they become available.
func (c *streamCursor) requestStream(n int64, chunk func([]byte), done func()) {
	c.enqueue(&readRequest{remaining: n, stream: true, chunk: chunk, done: done})
}

func (c *streamCursor) enqueue(r *readRequest) {
	if c.stopped() {
		return
	}
	c.requests = append(c.requests, r)
	c.serve()
}

// push appends a chunk of input. The cursor keeps a reference to chunk.
func (c *streamCursor) push(chunk []byte) {
	if c.stopped() || c.eof || len(chunk) == 0 {
		return
	}
	c.chunks = append(c.chunks, chunk)
	c.buffered += int64(len(chunk))
	if c.source != nil && !c.paused && c.highWater > 0 && c.buffered >= c.highWater {
		c.paused = true
		c.log.Debug("pausing source", zap.Int64("buffered", c.buffered))
		c.source.Pause()
	}
	c.serve()
}

// end marks the end of input. Requests that can no longer be served take their eof path.
func (c *streamCursor) end() {
	if c.stopped() || c.eof {
		return
	}
	c.eof = true
	c.serve()
}

// fail puts the cursor in its terminal error state and reports err to the observer. Only the
// first call has an effect.
func (c *streamCursor) fail(err error) {
	if c.stopped() {
		return
	}
	c.err = err
	c.drop()
	if c.onError != nil {
		c.onError(err)
	}
}

// close stops the cursor without an error.
func (c *streamCursor) close() {
	if c.stopped() {
		return
	}
	c.closed = true
	c.drop()
}

func (c *streamCursor) drop() {
	c.requests = nil
	c.chunks = nil
	c.pos = 0
	c.buffered = 0
}

func (c *streamCursor) ready(r *readRequest) bool {
	if r.stream {
		return r.remaining == 0 || c.buffered > 0
	}
	return r.remaining <= c.buffered
}

// serve fulfils queued requests in order for as long as the buffered bytes allow it. Callbacks may
// queue further requests; those are picked up by the same loop, so at most one request is in
// flight at any time.
func (c *streamCursor) serve() {
	if c.serving {
		return
	}
	c.serving = true
	defer func() { c.serving = false }()

	for !c.stopped() && len(c.requests) > 0 {
		r := c.requests[0]
		if c.ready(r) {
			c.fulfil(r)
			continue
		}
		if !c.eof {
			break
		}
		c.requests = c.requests[1:]
		if r.eof != nil {
			r.eof(c.buffered)
			continue
		}
		c.fail(newDecodeError(PrematureEnd, c.position,
			"input ended with %d bytes buffered, %d more requested", c.buffered, r.remaining))
	}

	if c.paused && !c.stopped() && len(c.requests) > 0 && !c.ready(c.requests[0]) {
		c.paused = false
		c.log.Debug("resuming source", zap.Int64("buffered", c.buffered),
			zap.Int64("wanted", c.requests[0].remaining))
		c.source.Resume()
	}
}

func (c *streamCursor) fulfil(r *readRequest) {
	if !r.stream {
		c.requests = c.requests[1:]
		r.atomic(c.consume(r.remaining))
		return
	}

	if r.remaining > 0 {
		n := r.remaining
		if c.buffered < n {
			n = c.buffered
		}
		r.remaining -= n
		for _, piece := range c.slices(n) {
			r.chunk(piece)
			if c.stopped() {
				return
			}
		}
	}
	if r.remaining == 0 {
		c.requests = c.requests[1:]
		r.done()
	}
}

// consume returns the next n bytes as a single slice, copying only when they span chunks.
func (c *streamCursor) consume(n int64) []byte {
	if n == 0 {
		return []byte{}
	}
	if head := c.chunks[0][c.pos:]; int64(len(head)) >= n {
		b := head[:n]
		c.advance(n)
		return b
	}
	b := make([]byte, 0, n)
	for _, piece := range c.slices(n) {
		b = append(b, piece...)
	}
	return b
}

// slices removes the next n bytes from the buffer and returns them as they were chunked.
func (c *streamCursor) slices(n int64) [][]byte {
	var pieces [][]byte
	for n > 0 {
		head := c.chunks[0][c.pos:]
		take := int64(len(head))
		if take > n {
			take = n
		}
		pieces = append(pieces, head[:take])
		c.advance(take)
		n -= take
	}
	return pieces
}

func (c *streamCursor) advance(n int64) {
	c.pos += int(n)
	c.buffered -= n
	c.position += n
	if c.pos == len(c.chunks[0]) {
		c.chunks[0] = nil
		c.chunks = c.chunks[1:]
		c.pos = 0
	}
}
