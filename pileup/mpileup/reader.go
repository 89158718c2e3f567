// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package mpileup

import (
	"bufio"
	"io"

	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/pkg/errors"
)

// maxLineLen bounds a single pileup line.  With -d 1000000, a deep position
// can have several megabytes of read bases and qualities.
const maxLineLen = 256 << 20

// Reader iterates over the lines of a single-sample pileup stream.  Usage:
//   r := NewReader(in)
//   for r.Scan() {
//     if skip(r.ChromPos()) { continue }
//     rec, err := r.Decode()
//     ...
//   }
//   if err := r.Err(); err != nil { ... }
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
	err     error
}

// NewReader returns a Reader for r.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	// bufio.Scanner does not grow its buffer past the limit set here.
	scanner.Buffer(make([]byte, 0, 64<<10), maxLineLen)
	return &Reader{scanner: scanner}
}

// Scan advances to the next non-empty line.  It returns false at the end of
// input, or on error.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for r.scanner.Scan() {
		r.lineNum++
		if len(r.scanner.Bytes()) != 0 {
			return true
		}
	}
	if err := r.scanner.Err(); err != nil {
		r.err = errors.Wrapf(err, "mpileup: line %d", r.lineNum+1)
	}
	return false
}

// LineNumber returns the 1-based number of the current line.
func (r *Reader) LineNumber() int {
	return r.lineNum
}

// Text returns a copy of the current line.
func (r *Reader) Text() string {
	return r.scanner.Text()
}

// ChromPos returns the chromosome and position of the current line without
// decoding the rest of it.  chrom is only valid until the next Scan call.
func (r *Reader) ChromPos() (chrom string, pos PosType, err error) {
	if chrom, pos, err = SplitChromPos(gunsafe.BytesToString(r.scanner.Bytes())); err != nil {
		err = errors.Wrapf(err, "line %d", r.lineNum)
	}
	return
}

// Decode decodes the current line.  Errors are wrapped with the line number;
// use errors.Cause to get the *MalformedLineError or *DecodeError.
func (r *Reader) Decode() (Record, error) {
	rec, err := Decode(r.scanner.Text())
	if err != nil {
		err = errors.Wrapf(err, "line %d", r.lineNum)
	}
	return rec, err
}

// Read is Scan followed by Decode.  It returns io.EOF at the end of input.
func (r *Reader) Read() (Record, error) {
	if !r.Scan() {
		if r.err != nil {
			return Record{}, r.err
		}
		return Record{}, io.EOF
	}
	return r.Decode()
}

// Err returns the first I/O error encountered by Scan.
func (r *Reader) Err() error {
	return r.err
}
