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
	"strconv"
	"strings"

	"github.com/grailbio/pileupreport/pileup"
)

// NField is the number of tab-separated columns in a single-sample pileup
// line.
const NField = 6

const (
	fieldChrom = iota
	fieldPos
	fieldRef
	fieldDepth
	fieldBases
	fieldQuals
)

// splitFields splits line on tabs into fields, returning the number of fields
// found.  If the line has more than len(fields) fields, len(fields)+1 is
// returned.
func splitFields(fields []string, line string) int {
	for i := range fields {
		tabPos := strings.IndexByte(line, '\t')
		if tabPos == -1 {
			fields[i] = line
			return i + 1
		}
		fields[i] = line[:tabPos]
		line = line[tabPos+1:]
	}
	return len(fields) + 1
}

func trimEOL(line string) string {
	for len(line) != 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

func parsePos(s string, nField int) (PosType, error) {
	pos, err := strconv.ParseInt(s, 10, 32)
	if err != nil || pos <= 0 {
		return 0, &MalformedLineError{NField: nField, Msg: "invalid position " + strconv.Quote(s)}
	}
	return PosType(pos), nil
}

// SplitChromPos extracts just the chromosome and position columns.  This is
// much cheaper than Decode when a line may be filtered out.  The returned
// chrom is a substring of line.
func SplitChromPos(line string) (chrom string, pos PosType, err error) {
	var fields [2]string
	n := splitFields(fields[:], trimEOL(line))
	if n < 3 {
		err = &MalformedLineError{NField: n, Msg: "expected 6 tab-separated fields"}
		return
	}
	chrom = fields[fieldChrom]
	pos, err = parsePos(fields[fieldPos], n)
	return
}

// indelStrand returns the strand encoded by an indel body's case.  Bodies
// mixing upper and lower case are rejected, since a single read can't be on
// both strands.  N/n count as letters of their case.
func indelStrand(seq string, offset int) (pileup.StrandType, error) {
	strand := pileup.StrandOfCase(seq[0])
	for i := 1; i < len(seq); i++ {
		if pileup.StrandOfCase(seq[i]) != strand {
			return strand, &DecodeError{Offset: offset, Char: seq[i], Msg: "mixed-case indel sequence " + strconv.Quote(seq)}
		}
	}
	return strand, nil
}

// Decode parses one pileup line.  A trailing newline is permitted.
//
// Errors are *MalformedLineError for layout problems and *DecodeError for
// read-bases grammar problems.
func Decode(line string) (rec Record, err error) {
	var fields [NField]string
	n := splitFields(fields[:], trimEOL(line))
	if n != NField {
		err = &MalformedLineError{NField: n, Msg: "expected 6 tab-separated fields"}
		return
	}
	rec.Chrom = fields[fieldChrom]
	if rec.Pos, err = parsePos(fields[fieldPos], n); err != nil {
		return
	}
	if len(fields[fieldRef]) == 0 {
		err = &MalformedLineError{NField: n, Msg: "empty reference base"}
		return
	}
	ref := fields[fieldRef][0]
	if ref >= 'a' && ref <= 'z' {
		ref -= 'a' - 'A'
	}
	rec.Ref = ref
	err = rec.addBases(fields[fieldBases])
	return
}

// addBases tallies a read-bases column into rec.
func (rec *Record) addBases(col string) error {
	// '.' and ',' against a non-ACGT reference (N, or an IUPAC code) are
	// counted as N.
	refBase := pileup.ASCIIToEnumTable[rec.Ref]
	tz := Tokenizer{col: col}
	for tz.Scan() {
		tok := &tz.tok
		switch tok.Kind {
		case TokenReadStart, TokenReadEnd:
			continue
		case TokenRefFwd, TokenRefRev:
			if refBase == pileup.BaseX {
				rec.NCount++
			} else {
				rec.Counts[refBase][tok.Kind-TokenRefFwd]++
			}
		case TokenBase:
			base := pileup.ASCIIToEnumTable[tok.Char]
			if base == pileup.BaseX {
				rec.NCount++
			} else {
				rec.Counts[base][pileup.StrandOfCase(tok.Char)]++
			}
		case TokenContinuation:
			rec.Continuations++
		case TokenInsertion, TokenDeletion:
			strand, err := indelStrand(tok.Seq, tok.Offset)
			if err != nil {
				return err
			}
			seq := strings.ToUpper(tok.Seq)
			if tok.Kind == TokenInsertion {
				rec.Insertions.Add(seq, strand)
			} else {
				rec.Deletions.Add(seq, strand)
			}
		}
		rec.Depth++
	}
	return tz.Err()
}
