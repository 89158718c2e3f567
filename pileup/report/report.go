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

// Package report generates per-position base-count reports from BAM and
// pileup samples.  Each output line describes one pileup position of one
// sample: depth, A/T/C/G/N counts (optionally per strand and as ratios),
// insertions, and deletions.
package report

import (
	"context"
	"io"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/traverse"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bgzf"
	"github.com/grailbio/pileupreport/interval"
	"github.com/grailbio/pileupreport/pileup/samtools"
)

// StdoutPath makes Run write to os.Stdout.
const StdoutPath = "-"

// loadRegions builds the region indexes from -bed or -region.
func loadRegions(ctx context.Context, opts *Opts, layout Layout) (ri regionIndexes, err error) {
	var entries []interval.Entry
	if opts.BedPath != "" {
		if entries, err = interval.LoadBEDFromPath(ctx, opts.BedPath); err != nil {
			return
		}
	} else if opts.Region != "" {
		var entry interval.Entry
		if entry, err = interval.ParseRegionString(opts.Region); err != nil {
			return
		}
		entries = []interval.Entry{entry}
	} else {
		return
	}
	ri.filter = interval.NewRegionIndex(entries, interval.PileupFilter)
	if layout.Names {
		ri.labels = interval.NewRegionIndex(entries, interval.LabelLookup)
	}
	return
}

// Run writes the report for samples to outPath ("-" for stdout).
//
// Samples are divided into up to opts.Parallelism contiguous groups, each
// processed by its own job into a temporary file.  The temporary files are
// concatenated in sample order, so the output is independent of parallelism.
func Run(ctx context.Context, samples []Sample, outPath string, opts *Opts) (err error) {
	var ropts reportOpts
	if ropts, err = opts.validate(); err != nil {
		return
	}
	var runner *samtools.Runner
	for _, s := range samples {
		kind, e := s.Kind()
		if e != nil {
			return e
		}
		if kind == KindBAM && runner == nil {
			if opts.Reference == "" {
				return errors.E(errors.Invalid, "report: -reference is required for BAM sample", s.Barcode)
			}
			if runner, err = samtools.NewRunner(opts.Samtools); err != nil {
				return
			}
		}
	}
	var regions regionIndexes
	if regions, err = loadRegions(ctx, opts, ropts.layout); err != nil {
		return
	}

	nJob := ropts.parallelism
	if nJob > len(samples) {
		nJob = len(samples)
	}
	tmpFiles := make([]*os.File, nJob)
	defer func() {
		for _, f := range tmpFiles {
			if f == nil {
				continue
			}
			if e := f.Close(); e != nil && err == nil {
				err = e
			}
			if e := os.Remove(f.Name()); e != nil && err == nil {
				err = e
			}
		}
	}()
	for i := range tmpFiles {
		if tmpFiles[i], err = ioutil.TempFile(ropts.tempDir, "pileup_report_rows"+strconv.Itoa(i)+"_*.tsv"); err != nil {
			return
		}
	}
	nRows := make([]int, nJob)
	err = traverse.Each(nJob, func(jobIdx int) error {
		startIdx := (jobIdx * len(samples)) / nJob
		endIdx := ((jobIdx + 1) * len(samples)) / nJob
		rw := &rowWriter{layout: ropts.layout, tsvw: tsv.NewWriter(tmpFiles[jobIdx])}
		for _, s := range samples[startIdx:endIdx] {
			sc := sampleContext{sample: s, regions: &regions, rw: rw}
			if err := sc.process(ctx, runner, &ropts, jobIdx); err != nil {
				return err
			}
			nRows[jobIdx] += sc.nRow
		}
		return rw.tsvw.Flush()
	})
	if err != nil {
		return
	}

	if err = concatRows(ctx, tmpFiles, outPath, &ropts); err != nil {
		return
	}
	total := 0
	for _, n := range nRows {
		total += n
	}
	log.Printf("report: %d sample(s), %d row(s) written to %s", len(samples), total, outPath)
	return nil
}

// RunFromConfig reads the sample configuration at confPath, then calls Run.
func RunFromConfig(ctx context.Context, confPath, outPath string, opts *Opts) error {
	samples, err := ReadSamplesFromPath(ctx, confPath)
	if err != nil {
		return err
	}
	return Run(ctx, samples, outPath, opts)
}

// concatRows writes the header followed by the contents of tmpFiles.
func concatRows(ctx context.Context, tmpFiles []*os.File, outPath string, opts *reportOpts) (err error) {
	var w io.Writer
	if outPath == StdoutPath {
		w = os.Stdout
	} else {
		var dst file.File
		if dst, err = file.Create(ctx, outPath); err != nil {
			return
		}
		defer file.CloseAndReport(ctx, dst, &err)
		w = dst.Writer(ctx)
	}
	if opts.format == formatTSVBgz {
		bgzfWriter := bgzf.NewWriter(w, opts.parallelism)
		defer func() {
			if e := bgzfWriter.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = bgzfWriter
	}

	rw := rowWriter{layout: opts.layout, tsvw: tsv.NewWriter(w)}
	if err = rw.writeHeader(); err != nil {
		return
	}
	if err = rw.tsvw.Flush(); err != nil {
		return
	}
	for _, f := range tmpFiles {
		if _, err = f.Seek(0, io.SeekStart); err != nil {
			return
		}
		if _, err = io.Copy(w, f); err != nil {
			return
		}
	}
	return nil
}
