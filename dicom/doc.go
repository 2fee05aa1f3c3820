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

// Package dicom provides a push based decoder for the DICOM file format (PS3.10 files and bare
// PS3.5 data sets). The low level API is the Decoder: input is written to it in chunks of any
// size as it arrives, and it reports data element headers, value payloads and the ends of
// sequences, items and encapsulated values to a Handler as soon as the bytes for them are
// available. The reported events are the same however the input is chunked.
//
// The high level API consists of Parse, which assembles the events into a DataSet, and the
// Encoder, which writes a DataSet back in a chosen transfer syntax. Decode feeds a Decoder from an
// io.Reader.
//
// Values are reported as raw bytes. DecodeValue interprets them according to their VR; character
// sets are not transcoded.
package dicom
