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
package samtools_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/pileupreport/interval"
	"github.com/grailbio/pileupreport/pileup/samtools"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/gosh"
	"v.io/x/lib/lookpath"
)

// writeHeaderOnlyBAM writes a BAM with the given contigs and no records.
func writeHeaderOnlyBAM(t *testing.T, path string, contigs map[string]int) {
	var refs []*sam.Reference
	for _, name := range []string{"chr1", "chr2", "chrX", "chrM"} {
		length, ok := contigs[name]
		if !ok {
			continue
		}
		ref, err := sam.NewReference(name, "", "", length, nil, nil)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	header, err := sam.NewHeader(nil, refs)
	require.NoError(t, err)
	out, err := os.Create(path)
	require.NoError(t, err)
	w, err := bam.NewWriter(out, header, 1)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, out.Close())
}

// writeScript writes an executable shell script standing in for samtools.
func writeScript(t *testing.T, path, body string) {
	require.NoError(t, ioutil.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755))
}

func TestMpileupArgs(t *testing.T) {
	opts := samtools.MpileupOpts{Reference: "/ref/hg19.fa", MinMapQ: 20, MinBaseQ: 13, MaxDepth: 1000000}
	expect.EQ(t, opts.Args("a.bam", ""), []string{
		"mpileup", "-A", "-B", "-f", "/ref/hg19.fa", "-q", "20", "-Q", "13", "-d", "1000000", "a.bam"})
	expect.EQ(t, opts.Args("a.bam", "chr1:5-10"), []string{
		"mpileup", "-A", "-B", "-f", "/ref/hg19.fa", "-q", "20", "-Q", "13", "-d", "1000000", "-r", "chr1:5-10", "a.bam"})
}

func TestReadContigs(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)
	ctx := vcontext.Background()

	bamPath := filepath.Join(tempDir, "in.bam")
	writeHeaderOnlyBAM(t, bamPath, map[string]int{"chr1": 1000, "chrM": 16569})
	contigs, err := samtools.ReadContigs(ctx, bamPath)
	assert.NoError(t, err)
	expect.EQ(t, contigs, map[string]int{"chr1": 1000, "chrM": 16569})

	_, err = samtools.ReadContigs(ctx, filepath.Join(tempDir, "missing.bam"))
	expect.NotNil(t, err)
}

func TestNewRunnerMissingBinary(t *testing.T) {
	_, err := samtools.NewRunner("/nonexistent/samtools")
	expect.NotNil(t, err)
	_, err = samtools.NewRunner("samtools-does-not-exist-anywhere")
	expect.NotNil(t, err)
}

func TestMpileupPerRegion(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)
	ctx := vcontext.Background()

	bamPath := filepath.Join(tempDir, "in.bam")
	writeHeaderOnlyBAM(t, bamPath, map[string]int{"chr1": 1000, "chr2": 1000})
	script := filepath.Join(tempDir, "samtools")
	// Echo the region argument so that the invocation order is visible.
	writeScript(t, script, `while [ $# -gt 0 ]; do if [ "$1" = "-r" ]; then echo "$2"; fi; shift; done`)

	r, err := samtools.NewRunner(script)
	assert.NoError(t, err)
	regions := []interval.PileupFilterInterval{
		{Chrom: "chr1", Start: 11, End: 20},
		{Chrom: "chrX", Start: 1, End: 5},
		{Chrom: "chr2", Start: 100, End: 100},
		{Chrom: "chr1", Start: 15, End: 30},
	}
	var out bytes.Buffer
	opts := samtools.DefaultMpileupOpts
	opts.Reference = "/dev/null"
	assert.NoError(t, r.Mpileup(ctx, opts, bamPath, regions, &out))
	expect.EQ(t, out.String(), "chr1:11-20\nchr2:100-100\nchr1:15-30\n")
}

func TestMpileupRequiresReference(t *testing.T) {
	r := &samtools.Runner{Path: "/bin/true"}
	err := r.Mpileup(vcontext.Background(), samtools.DefaultMpileupOpts, "in.bam", nil, ioutil.Discard)
	expect.NotNil(t, err)
}

func TestMpileupFailure(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)

	script := filepath.Join(tempDir, "samtools")
	writeScript(t, script, "echo '[mpileup] failed to open in.bam' >&2\nexit 3")
	var stderr bytes.Buffer
	r := &samtools.Runner{Path: script, Stderr: &stderr}
	opts := samtools.DefaultMpileupOpts
	opts.Reference = "/dev/null"
	err := r.Mpileup(vcontext.Background(), opts, "in.bam", nil, ioutil.Discard)
	toolErr, ok := err.(*samtools.ExternalToolError)
	require.True(t, ok, "got %v", err)
	expect.EQ(t, toolErr.Args[0], script)
	expect.EQ(t, toolErr.Args[len(toolErr.Args)-1], "in.bam")
	expect.True(t, strings.Contains(stderr.String(), "failed to open"))
	expect.True(t, strings.Contains(err.Error(), "mpileup -A -B"))
}

// TestRealSamtools runs the installed samtools against a BAM without reads.
func TestRealSamtools(t *testing.T) {
	sh := gosh.NewShell(t)
	defer sh.Cleanup()
	if _, err := lookpath.Look(sh.Vars, "samtools"); err != nil {
		t.Skipf("samtools not found on the machine. Skipping the test")
		return
	}
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tempDir)
	ctx := vcontext.Background()

	faPath := filepath.Join(tempDir, "ref.fa")
	require.NoError(t, ioutil.WriteFile(faPath, []byte(">chr1\nACGTACGTACGTACGTACGT\n"), 0644))
	bamPath := filepath.Join(tempDir, "in.bam")
	writeHeaderOnlyBAM(t, bamPath, map[string]int{"chr1": 20})

	r, err := samtools.NewRunner("")
	require.NoError(t, err)
	version, err := r.Version(ctx)
	require.NoError(t, err)
	t.Logf("using %s", version)

	opts := samtools.DefaultMpileupOpts
	opts.Reference = faPath
	var out bytes.Buffer
	require.NoError(t, r.Mpileup(ctx, opts, bamPath, nil, &out))
	expect.EQ(t, out.Len(), 0)
}
