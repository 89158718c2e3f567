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
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/pileupreport/pileup/mpileup"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func TestLayoutHeader(t *testing.T) {
	tests := []struct {
		layout   Layout
		expected string
	}{
		{
			Layout{},
			"barcode chromosome position reference depth A T C G N Ins Del",
		},
		{
			Layout{Ratio: true},
			"barcode chromosome position reference depth A A_ratio T T_ratio C C_ratio G G_ratio N N_ratio Ins Del",
		},
		{
			Layout{KeepStrand: true, Names: true},
			"barcode chromosome position reference depth A+ A- T+ T- C+ C- G+ G- N Ins Del Name",
		},
		{
			Layout{KeepStrand: true, Ratio: true},
			"barcode chromosome position reference depth A+ A+_ratio A- A-_ratio T+ T+_ratio T- T-_ratio " +
				"C+ C+_ratio C- C-_ratio G+ G+_ratio G- G-_ratio N N_ratio Ins Del",
		},
	}
	for _, test := range tests {
		expect.EQ(t, strings.Join(test.layout.Header(), " "), test.expected, "layout %+v", test.layout)
	}
}

// renderRow writes a single row and returns it, without the trailing newline,
// with tabs replaced by spaces.
func renderRow(t *testing.T, layout Layout, line string, carried mpileup.IndelCounts, name string) string {
	rec, err := mpileup.Decode(line)
	assert.NoError(t, err)
	var buf bytes.Buffer
	rw := rowWriter{layout: layout, tsvw: tsv.NewWriter(&buf)}
	assert.NoError(t, rw.writeRow("S1", &rec, carried, name))
	assert.NoError(t, rw.tsvw.Flush())
	return strings.Replace(strings.TrimSuffix(buf.String(), "\n"), "\t", " ", -1)
}

func TestLayoutRow(t *testing.T) {
	const line = "chr1\t101\tC\t3\t*.,\tIII"
	carried := mpileup.IndelCounts{{Seq: "CT", Counts: [2]uint32{1, 0}}}
	tests := []struct {
		layout   Layout
		expected string
	}{
		{
			Layout{},
			"S1 chr1 101 C 3 0 0 2 0 0 0 *:1;CT:1",
		},
		{
			Layout{Ratio: true},
			"S1 chr1 101 C 3 0 0.00 0 0.00 2 66.67 0 0.00 0 0.00 0 *:1;CT:1",
		},
		{
			Layout{KeepStrand: true},
			"S1 chr1 101 C 3 0 0 0 0 1 1 0 0 0 0 *:1;CT:1,0",
		},
		{
			Layout{KeepStrand: true, Ratio: true},
			"S1 chr1 101 C 3 0 0.00 0 0.00 0 0.00 0 0.00 1 33.33 1 33.33 0 0.00 0 0.00 0 0.00 0 *:1;CT:1,0",
		},
		{
			Layout{Names: true},
			"S1 chr1 101 C 3 0 0 2 0 0 0 *:1;CT:1 exon1,exon1b",
		},
	}
	for _, test := range tests {
		expect.EQ(t, renderRow(t, test.layout, line, carried, "exon1,exon1b"), test.expected, "layout %+v", test.layout)
	}
}

func TestLayoutIndels(t *testing.T) {
	const line = "chrX\t7\tg\t5\t+2AC+2ac+1T-1a\t#####"
	expect.EQ(t, renderRow(t, Layout{}, line, nil, ""),
		"S1 chrX 7 G 4 0 0 0 0 0 AC:2;T:1 0")
	expect.EQ(t, renderRow(t, Layout{KeepStrand: true}, line, nil, ""),
		"S1 chrX 7 G 4 0 0 0 0 0 0 0 0 0 AC:1,1;T:1,0 0")
	// Carried deletions alone, with no continuation at this position.
	carried := mpileup.IndelCounts{{Seq: "G", Counts: [2]uint32{0, 2}}, {Seq: "GT", Counts: [2]uint32{1, 0}}}
	expect.EQ(t, renderRow(t, Layout{}, line, carried, ""),
		"S1 chrX 7 G 4 0 0 0 0 0 AC:2;T:1 G:2;GT:1")
}

func TestLayoutZeroDepth(t *testing.T) {
	expect.EQ(t, renderRow(t, Layout{Ratio: true, Names: true}, "chr1\t1\tA\t0\t\t", nil, ""),
		"S1 chr1 1 A 0 0 0.00 0 0.00 0 0.00 0 0.00 0 0.00 0 0 ")
}
