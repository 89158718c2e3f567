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
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// SampleKind identifies how a sample's input is read.
type SampleKind int

const (
	// KindPileup is a samtools mpileup text file, possibly compressed.
	KindPileup SampleKind = iota
	// KindBAM is a BAM file; it's converted with samtools mpileup first.
	KindBAM
)

// Sample is a single line of the sample configuration file.
type Sample struct {
	Barcode string `tsv:"barcode"`
	Path    string `tsv:"path"`
}

// Kind returns the input kind implied by the sample path: a ".bam" suffix
// means BAM, and ".pileup" anywhere in the path means pileup text (so that
// "x.pileup.gz" works).
func (s Sample) Kind() (SampleKind, error) {
	if strings.HasSuffix(s.Path, ".bam") {
		return KindBAM, nil
	}
	if strings.Contains(s.Path, ".pileup") {
		return KindPileup, nil
	}
	return 0, errors.E(errors.Invalid, "report: sample", s.Barcode, "has path", s.Path,
		"with unsupported extension; usable extensions are .pileup and .bam")
}

// ReadSamples reads a "barcode<TAB>path" sample configuration.  Lines
// starting with '#' are ignored.
func ReadSamples(r io.Reader) ([]Sample, error) {
	tsvReader := tsv.NewReader(r)
	tsvReader.Comment = '#'

	var samples []Sample
	for {
		var s Sample
		if err := tsvReader.Read(&s); err != nil {
			if err == io.EOF {
				break
			}
			return nil, errors.E(errors.Invalid, err, "report: reading sample configuration")
		}
		if _, err := s.Kind(); err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// ReadSamplesFromPath is a wrapper for ReadSamples that takes a path instead
// of an io.Reader.
func ReadSamplesFromPath(ctx context.Context, path string) (samples []Sample, err error) {
	var f file.File
	if f, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, f, &err)
	return ReadSamples(f.Reader(ctx))
}
