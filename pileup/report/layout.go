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
package report

import (
	"strconv"

	"github.com/grailbio/base/tsv"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/grailbio/pileupreport/pileup"
	"github.com/grailbio/pileupreport/pileup/mpileup"
)

// Layout determines the report columns.
type Layout struct {
	// KeepStrand splits each A/C/G/T count into forward and reverse columns,
	// and indel counts into "fwd,rev" pairs.
	KeepStrand bool
	// Ratio adds a <col>_ratio column, the percentage of depth, after each
	// base count.
	Ratio bool
	// Names adds a trailing Name column with the labels of the BED intervals
	// containing the position.
	Names bool
}

// emptyIndelCol is written when a position has no insertions (or deletions).
const emptyIndelCol = "0"

// Header returns the column names.
func (l Layout) Header() []string {
	cols := []string{"barcode", "chromosome", "position", "reference", "depth"}
	addCol := func(name string) {
		cols = append(cols, name)
		if l.Ratio {
			cols = append(cols, name+"_ratio")
		}
	}
	for _, base := range pileup.ReportOrder {
		name := string(pileup.EnumToASCIITable[base])
		if l.KeepStrand {
			addCol(name + string(pileup.StrandTypeToASCIITable[pileup.StrandFwd]))
			addCol(name + string(pileup.StrandTypeToASCIITable[pileup.StrandRev]))
		} else {
			addCol(name)
		}
	}
	addCol("N")
	cols = append(cols, "Ins", "Del")
	if l.Names {
		cols = append(cols, "Name")
	}
	return cols
}

// rowWriter renders Records under a Layout.  It is not thread-safe.
type rowWriter struct {
	layout Layout
	tsvw   *tsv.Writer
	// buf is scratch space for the indel columns.
	buf []byte
}

// writeHeader writes the header line.
func (rw *rowWriter) writeHeader() error {
	for _, col := range rw.layout.Header() {
		rw.tsvw.WriteString(col)
	}
	return rw.tsvw.EndLine()
}

// writeCount writes count, followed by its ratio column if enabled.
func (rw *rowWriter) writeCount(count, depth uint32) {
	rw.tsvw.WriteUint32(count)
	if !rw.layout.Ratio {
		return
	}
	var ratio float64
	if depth != 0 {
		ratio = float64(count) / float64(depth) * 100
	}
	rw.buf = strconv.AppendFloat(rw.buf[:0], ratio, 'f', 2, 64)
	rw.tsvw.WriteString(gunsafe.BytesToString(rw.buf))
}

// appendIndels appends "SEQ:n;..." (or "SEQ:fwd,rev;..." with KeepStrand) to
// dst.
func (rw *rowWriter) appendIndels(dst []byte, indels mpileup.IndelCounts) []byte {
	for _, ic := range indels {
		if len(dst) != 0 {
			dst = append(dst, ';')
		}
		dst = append(dst, ic.Seq...)
		dst = append(dst, ':')
		if rw.layout.KeepStrand {
			dst = strconv.AppendUint(dst, uint64(ic.Counts[pileup.StrandFwd]), 10)
			dst = append(dst, ',')
			dst = strconv.AppendUint(dst, uint64(ic.Counts[pileup.StrandRev]), 10)
		} else {
			dst = strconv.AppendUint(dst, uint64(ic.Total()), 10)
		}
	}
	return dst
}

func (rw *rowWriter) writeIndelCol(col []byte) {
	if len(col) == 0 {
		rw.tsvw.WriteString(emptyIndelCol)
		return
	}
	rw.tsvw.WriteString(gunsafe.BytesToString(col))
}

// writeRow writes one report line.  carried holds the deletions of the
// previous row, which are shown after this row's continuation count.
func (rw *rowWriter) writeRow(barcode string, rec *mpileup.Record, carried mpileup.IndelCounts, name string) error {
	tsvw := rw.tsvw
	tsvw.WriteString(barcode)
	tsvw.WriteString(rec.Chrom)
	tsvw.WriteUint32(uint32(rec.Pos))
	tsvw.WriteByte(rec.Ref)
	tsvw.WriteUint32(rec.Depth)
	for _, base := range pileup.ReportOrder {
		if rw.layout.KeepStrand {
			rw.writeCount(rec.Counts[base][pileup.StrandFwd], rec.Depth)
			rw.writeCount(rec.Counts[base][pileup.StrandRev], rec.Depth)
		} else {
			rw.writeCount(rec.BaseTotal(base), rec.Depth)
		}
	}
	rw.writeCount(rec.NCount, rec.Depth)

	rw.buf = rw.appendIndels(rw.buf[:0], rec.Insertions)
	rw.writeIndelCol(rw.buf)

	rw.buf = rw.buf[:0]
	if rec.Continuations != 0 {
		rw.buf = append(rw.buf, "*:"...)
		rw.buf = strconv.AppendUint(rw.buf, uint64(rec.Continuations), 10)
	}
	rw.buf = rw.appendIndels(rw.buf, carried)
	rw.writeIndelCol(rw.buf)

	if rw.layout.Names {
		tsvw.WriteString(name)
	}
	return tsvw.EndLine()
}
