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
package pileup

import (
	"github.com/grailbio/pileupreport/interval"
)

// Common pileup components.

// PosType is the integer type used to represent genomic positions.
type PosType = interval.PosType

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = interval.PosTypeMax

// These constants index the first dimension of per-base count arrays.  The
// A/C/G/T order is the natural 2-bit packing order; BaseX collects everything
// else (N and ambiguity codes).
const (
	// BaseA represents an A base.
	BaseA byte = iota
	// BaseC represents an C base.
	BaseC
	// BaseG represents an G base.
	BaseG
	// BaseT represents an T base.
	BaseT
	// BaseX is a catch-all.
	BaseX
)

const (
	// NBase is the number of regular base types.
	NBase = 4
	// NBaseEnum counts BaseX as well as the regular base types.
	NBaseEnum = 5
)

// EnumToASCIITable is the A/C/G/T/X -> ASCII mapping, with X rendered as 'N'.
var EnumToASCIITable = [...]byte{'A', 'C', 'G', 'T', 'N'}

// ReportOrder is the base order used by text reports: A, T, C, G.  (This
// predates this package and is kept for compatibility with downstream
// spreadsheets.)
var ReportOrder = [NBase]byte{BaseA, BaseT, BaseC, BaseG}

// ASCIIToEnumTable maps an uppercase or lowercase ASCII base to its
// A/C/G/T/X enum value.  Anything that isn't ACGTacgt maps to BaseX.
var ASCIIToEnumTable = func() (t [256]byte) {
	for i := range t {
		t[i] = BaseX
	}
	for b := BaseA; b < NBase; b++ {
		upper := EnumToASCIITable[b]
		t[upper] = b
		t[upper|0x20] = b
	}
	return
}()

// StrandType describes which strand a read observation was aligned to.
//
// Unlike bio-pileup's read-pair strand, this is the strand of the single read
// as encoded by case in a pileup column, so there is no "undefined" value.
// The values double as the minor index of [NBase][2]uint32 count arrays.
type StrandType int

const (
	// StrandFwd means the observation came from a forward-strand read
	// (uppercase / '.' in the pileup encoding).
	StrandFwd StrandType = iota
	// StrandRev means the observation came from a reverse-strand read
	// (lowercase / ',' in the pileup encoding).
	StrandRev
)

// StrandTypeToASCIITable is the StrandType -> ASCII mapping.
var StrandTypeToASCIITable = [...]byte{'+', '-'}

// StrandOfCase returns StrandFwd for an uppercase ASCII letter and StrandRev
// for a lowercase one.  Other bytes are reported as StrandFwd.
func StrandOfCase(c byte) StrandType {
	if c >= 'a' && c <= 'z' {
		return StrandRev
	}
	return StrandFwd
}
