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
package mpileup_test

import (
	"io"
	"strings"
	"testing"

	"github.com/grailbio/pileupreport/pileup/mpileup"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/pkg/errors"
)

const readerInput = "chr1\t100\tA\t2\t..\tBB\r\n" +
	"\n" +
	"chr1\t101\tC\t3\t,,t\tBBB\n" +
	"chr2\t7\tT\t1\t+1A.\tB"

func TestReaderRead(t *testing.T) {
	r := mpileup.NewReader(strings.NewReader(readerInput))
	var (
		chroms []string
		poses  []mpileup.PosType
		depths []uint32
	)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		assert.NoError(t, err)
		chroms = append(chroms, rec.Chrom)
		poses = append(poses, rec.Pos)
		depths = append(depths, rec.Depth)
	}
	expect.EQ(t, chroms, []string{"chr1", "chr1", "chr2"})
	expect.EQ(t, poses, []mpileup.PosType{100, 101, 7})
	expect.EQ(t, depths, []uint32{2, 3, 2})
	// The blank line still counts.
	expect.EQ(t, r.LineNumber(), 4)
}

func TestReaderChromPos(t *testing.T) {
	r := mpileup.NewReader(strings.NewReader(readerInput))
	var kept []string
	for r.Scan() {
		chrom, pos, err := r.ChromPos()
		assert.NoError(t, err)
		if chrom == "chr1" && pos == 101 {
			continue
		}
		kept = append(kept, r.Text())
	}
	assert.NoError(t, r.Err())
	expect.EQ(t, kept, []string{"chr1\t100\tA\t2\t..\tBB", "chr2\t7\tT\t1\t+1A.\tB"})
}

func TestReaderErrorLineNumber(t *testing.T) {
	r := mpileup.NewReader(strings.NewReader("chr1\t1\tA\t1\t.\tB\nchr1\t2\tA\t1\t?\tB\n"))
	_, err := r.Read()
	assert.NoError(t, err)
	_, err = r.Read()
	assert.NotNil(t, err)
	assert.HasSubstr(t, err.Error(), "line 2")
	_, ok := errors.Cause(err).(*mpileup.DecodeError)
	expect.True(t, ok)
}
