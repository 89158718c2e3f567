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
	"github.com/grailbio/pileupreport/pileup"
)

// PosType is the integer type used to represent genomic positions.
type PosType = pileup.PosType

// IndelCount is the per-strand count for one indel sequence.
type IndelCount struct {
	// Seq is the uppercase inserted or deleted sequence.
	Seq string
	// Counts[pileup.StrandFwd] and Counts[pileup.StrandRev].
	Counts [2]uint32
}

// Total returns the forward + reverse count.
func (c IndelCount) Total() uint32 {
	return c.Counts[0] + c.Counts[1]
}

// IndelCounts is an insertion-ordered map from sequence to IndelCount.  A
// single position rarely has more than a few distinct indels, so lookup is a
// linear scan.
type IndelCounts []IndelCount

// Add increments the given strand's count for seq, which must already be
// uppercase.
func (c *IndelCounts) Add(seq string, strand pileup.StrandType) {
	for i := range *c {
		if (*c)[i].Seq == seq {
			(*c)[i].Counts[strand]++
			return
		}
	}
	ic := IndelCount{Seq: seq}
	ic.Counts[strand] = 1
	*c = append(*c, ic)
}

// Get returns the counts for seq.
func (c IndelCounts) Get(seq string) (counts [2]uint32, found bool) {
	for _, ic := range c {
		if ic.Seq == seq {
			return ic.Counts, true
		}
	}
	return
}

// Total returns the number of indel events across all sequences and strands.
func (c IndelCounts) Total() uint32 {
	var n uint32
	for _, ic := range c {
		n += ic.Total()
	}
	return n
}

// Record is the decoded form of a single pileup line.
//
// Count values are of type uint32 instead of int, matching the rest of the
// pileup code.
type Record struct {
	Chrom string
	// Pos is 1-based.
	Pos PosType
	// Ref is the uppercased reference base.
	Ref byte
	// Depth is the number of observations in the read-bases column: one per
	// match, mismatch, N, '*', insertion, and deletion.
	Depth uint32
	// Counts[base][strand] for base in {A, C, G, T} (pileup.BaseA..BaseT) and
	// strand in {pileup.StrandFwd, pileup.StrandRev}.
	Counts [pileup.NBase][2]uint32
	// NCount is the number of N observations, regardless of strand.
	NCount     uint32
	Insertions IndelCounts
	Deletions  IndelCounts
	// Continuations is the number of '*' observations.  Strand isn't tracked.
	Continuations uint32
}

// BaseTotal returns the forward + reverse count for the given base enum.
func (r *Record) BaseTotal(base byte) uint32 {
	return r.Counts[base][0] + r.Counts[base][1]
}
