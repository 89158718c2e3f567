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
	"context"
	"io"
	"io/ioutil"
	"os"
	"strconv"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/pileupreport/interval"
	"github.com/grailbio/pileupreport/pileup/mpileup"
	"github.com/grailbio/pileupreport/pileup/samtools"
	"github.com/pkg/errors"
)

// regionIndexes holds both views of the region filter.  Either may be nil.
type regionIndexes struct {
	// filter decides which pileup lines are generated or kept.
	filter *interval.RegionIndex
	// labels provides the Name column.
	labels *interval.RegionIndex
}

// filterRegions returns the samtools regions, in chromosome first-seen and
// then input order.
func (ri *regionIndexes) filterRegions() []interval.PileupFilterInterval {
	if ri.filter == nil {
		return nil
	}
	regions := make([]interval.PileupFilterInterval, 0, ri.filter.Len())
	for _, chrom := range ri.filter.Chroms() {
		for _, r := range ri.filter.Regions(chrom) {
			regions = append(regions, interval.PileupFilterInterval(r))
		}
	}
	return regions
}

// sampleContext is the per-sample processing state.  Only the goroutine
// processing the sample touches it.
type sampleContext struct {
	sample  Sample
	regions *regionIndexes
	carry   mpileup.DeletionCarry
	rw      *rowWriter
	nRow    int
}

// processRecord writes the report line for rec.
func (sc *sampleContext) processRecord(rec *mpileup.Record) error {
	carried := sc.carry.Swap(rec)
	var name string
	if sc.rw.layout.Names {
		name = sc.regions.labels.Labels(rec.Chrom, rec.Pos)
	}
	sc.nRow++
	return sc.rw.writeRow(sc.sample.Barcode, rec, carried, name)
}

// processPileup reports every line of a pileup stream.  If filter is true,
// lines outside the region filter are skipped before decoding, and don't
// affect the deletion carry.
func (sc *sampleContext) processPileup(r io.Reader, filter bool) error {
	sc.carry.Reset()
	pr := mpileup.NewReader(r)
	for pr.Scan() {
		if filter {
			chrom, pos, err := pr.ChromPos()
			if err != nil {
				return err
			}
			if !sc.regions.filter.Contains(chrom, pos) {
				continue
			}
		}
		rec, err := pr.Decode()
		if err != nil {
			return err
		}
		if err = sc.processRecord(&rec); err != nil {
			return err
		}
	}
	if pr.Err() != nil {
		return pr.Err()
	}
	if pending := sc.carry.Pending(); len(pending) != 0 {
		log.Debug.Printf("report: %s: dropping %d deletion(s) after last position", sc.sample.Barcode, pending.Total())
	}
	return nil
}

// processPileupFile reports a (possibly compressed) pileup text file.
func (sc *sampleContext) processPileupFile(ctx context.Context) (err error) {
	var f file.File
	if f, err = file.Open(ctx, sc.sample.Path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, f, &err)
	r, _ := compress.NewReader(f.Reader(ctx))
	defer func() {
		if e := r.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return sc.processPileup(r, sc.regions.filter != nil)
}

// processBAM runs samtools mpileup into a temporary file, then reports it.
// samtools applies the region filter itself.
func (sc *sampleContext) processBAM(ctx context.Context, runner *samtools.Runner, opts *reportOpts, jobIdx int) (err error) {
	var tmpFile *os.File
	if tmpFile, err = ioutil.TempFile(opts.tempDir, "pileup_report_tmp"+strconv.Itoa(jobIdx)+"_*.pileup"); err != nil {
		return
	}
	defer func() {
		if e := os.Remove(tmpFile.Name()); e != nil && err == nil {
			err = e
		}
	}()
	defer func() {
		if e := tmpFile.Close(); e != nil && err == nil {
			err = e
		}
	}()
	if err = runner.Mpileup(ctx, opts.mpileup, sc.sample.Path, sc.regions.filterRegions(), tmpFile); err != nil {
		return
	}
	if _, err = tmpFile.Seek(0, io.SeekStart); err != nil {
		return
	}
	return sc.processPileup(tmpFile, false)
}

// process writes the report lines for one sample.
func (sc *sampleContext) process(ctx context.Context, runner *samtools.Runner, opts *reportOpts, jobIdx int) error {
	kind, err := sc.sample.Kind()
	if err != nil {
		return err
	}
	if kind == KindBAM {
		err = sc.processBAM(ctx, runner, opts, jobIdx)
	} else {
		err = sc.processPileupFile(ctx)
	}
	if err != nil {
		return errors.Wrapf(err, "sample %s (%s)", sc.sample.Barcode, sc.sample.Path)
	}
	log.Debug.Printf("report: %s: %d row(s)", sc.sample.Barcode, sc.nRow)
	return nil
}
