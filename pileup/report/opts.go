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
	"runtime"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/pileupreport/pileup/samtools"
)

// Opts holds the report options.  The CLI fills this from its flags.
type Opts struct {
	// BedPath restricts the report to the listed intervals.  Mutually exclusive
	// with Region.
	BedPath string
	// Region restricts the report to a single "chr:start-end" (1-based,
	// inclusive) region.
	Region string
	Names  bool
	Ratio  bool
	// KeepStrand reports forward and reverse counts separately.
	KeepStrand bool
	// Reference, Mapq, BaseQual, and MaxDepth are passed to samtools mpileup.
	// Reference is required iff there is a BAM sample.
	Reference string
	Mapq      int
	BaseQual  int
	MaxDepth  int
	// Format is "tsv" or "tsv-bgz".
	Format string
	// Parallelism is the maximum number of samples processed at once; 0 =
	// runtime.NumCPU().
	Parallelism int
	// TempDir is where intermediate pileup and report shards go; empty means
	// os.TempDir().
	TempDir string
	// Samtools is the samtools binary, a path or a name looked up in $PATH.
	Samtools string
}

// DefaultOpts holds the default options.
var DefaultOpts = Opts{
	Mapq:        samtools.DefaultMpileupOpts.MinMapQ,
	BaseQual:    samtools.DefaultMpileupOpts.MinBaseQ,
	MaxDepth:    samtools.DefaultMpileupOpts.MaxDepth,
	Format:      "tsv",
	Parallelism: 1,
	Samtools:    samtools.DefaultBinary,
}

type outputFormat int

const (
	formatTSV outputFormat = iota
	formatTSVBgz
)

// reportOpts is the validated form of Opts.
type reportOpts struct {
	layout      Layout
	format      outputFormat
	parallelism int
	tempDir     string
	mpileup     samtools.MpileupOpts
}

func (o *Opts) validate() (ropts reportOpts, err error) {
	if o.BedPath != "" && o.Region != "" {
		return ropts, errors.E(errors.Invalid, "report: -bed and -region can't be used together")
	}
	if o.Names && o.BedPath == "" {
		return ropts, errors.E(errors.Invalid, "report: -names requires -bed")
	}
	ropts.layout = Layout{KeepStrand: o.KeepStrand, Ratio: o.Ratio, Names: o.Names}
	switch o.Format {
	case "", "tsv":
		ropts.format = formatTSV
	case "tsv-bgz":
		ropts.format = formatTSVBgz
	default:
		return ropts, errors.E(errors.Invalid, "report: unrecognized format", o.Format)
	}
	if o.Mapq < 0 || o.BaseQual < 0 {
		return ropts, errors.E(errors.Invalid, "report: -mapq and -baq must be nonnegative")
	}
	if o.MaxDepth <= 0 {
		return ropts, errors.E(errors.Invalid, "report: -max-depth must be positive")
	}
	ropts.parallelism = o.Parallelism
	if ropts.parallelism <= 0 {
		ropts.parallelism = runtime.NumCPU()
	}
	ropts.tempDir = o.TempDir
	ropts.mpileup = samtools.MpileupOpts{
		Reference: o.Reference,
		MinMapQ:   o.Mapq,
		MinBaseQ:  o.BaseQual,
		MaxDepth:  o.MaxDepth,
	}
	return ropts, nil
}
