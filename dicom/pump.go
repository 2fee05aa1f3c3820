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
	"context"
	"io"

	"go.uber.org/zap"
)

// readerSource is the Source of a Decoder fed from an io.Reader. The reader is only read when the
// decoder returns wanting more input, so pausing never has to stop a read in flight; the state is
// kept for diagnostics.
type readerSource struct {
	paused  bool
	pauses  int
	resumes int
}

func (s *readerSource) Pause() {
	s.paused = true
	s.pauses++
}

func (s *readerSource) Resume() {
	s.paused = false
	s.resumes++
}

// Decode reads r to the end and reports its content to h. It returns the fatal decoding error, if
// any. A read error or the cancellation of ctx ends the session with an UpstreamError.
func Decode(ctx context.Context, r io.Reader, h Handler, opts ...DecodeOption) error {
	d := NewDecoder(h, opts...)
	src := &readerSource{}
	d.SetSource(src)

	for !d.Finished() {
		if err := ctx.Err(); err != nil {
			d.Abort(err)
			break
		}
		chunk := make([]byte, d.cfg.readSize)
		n, err := r.Read(chunk)
		if n > 0 {
			d.cursor.push(chunk[:n])
		}
		if err == io.EOF {
			d.Close()
			break
		}
		if err != nil {
			d.Abort(err)
			break
		}
	}

	d.log.Debug("input drained",
		zap.Int64("bytes", d.Offset()),
		zap.Int("pauses", src.pauses),
		zap.Int("resumes", src.resumes))
	return d.Err()
}
