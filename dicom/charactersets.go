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
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// rawCharacterRepertoire maps every byte to the code point of the same value. Text values are
// extracted with it regardless of Specific Character Set (0008,0005): the decoder does not
// transcode, but a string built from arbitrary bytes must still be valid UTF-8.
var rawCharacterRepertoire encoding.Encoding = charmap.ISO8859_1

func rawString(b []byte) string {
	for _, c := range b {
		if c >= 0x80 {
			decoded, err := rawCharacterRepertoire.NewDecoder().Bytes(b)
			if err != nil {
				return string(b)
			}
			return string(decoded)
		}
	}
	return string(b)
}

// rawBytes is the inverse of rawString. Runes outside of the repertoire are an error.
func rawBytes(s string) ([]byte, error) {
	return rawCharacterRepertoire.NewEncoder().Bytes([]byte(s))
}
