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
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/pileupreport/pileup/report"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix is prepended to the envDefaults variable names.
const envPrefix = "PILEUP_REPORT"

// envDefaults holds flag defaults that can be overridden by the environment,
// e.g. PILEUP_REPORT_SAMTOOLS.
type envDefaults struct {
	Samtools    string
	TempDir     string `split_words:"true"`
	Parallelism int
}

// defaultOpts returns report.DefaultOpts, updated from the environment.
func defaultOpts() (report.Opts, error) {
	opts := report.DefaultOpts
	env := envDefaults{
		Samtools:    opts.Samtools,
		TempDir:     opts.TempDir,
		Parallelism: opts.Parallelism,
	}
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return opts, err
	}
	opts.Samtools = env.Samtools
	opts.TempDir = env.TempDir
	opts.Parallelism = env.Parallelism
	return opts, nil
}

// registerFlags binds flags to opts, using the current opts values as
// defaults.  It returns the -out flag.
func registerFlags(fs *flag.FlagSet, opts *report.Opts) *string {
	fs.StringVar(&opts.BedPath, "bed", opts.BedPath, "Input BED path (0-based start, end exclusive, optional name column); restricts the report to these intervals")
	fs.StringVar(&opts.Region, "region", opts.Region, "Restrict the report to the specified region. Format as <contig ID>:<1-based first pos>-<last pos>, <contig ID>:<1-based pos>, or just <contig ID>; incompatible with -bed")
	fs.BoolVar(&opts.Names, "names", opts.Names, "Add a Name column with the names of the BED intervals containing each position; requires -bed")
	fs.BoolVar(&opts.Ratio, "ratio", opts.Ratio, "Follow each count with its percentage of depth")
	fs.BoolVar(&opts.KeepStrand, "keep-strand", opts.KeepStrand, "Report forward- and reverse-strand counts separately")
	fs.StringVar(&opts.Reference, "reference", opts.Reference, "Reference FASTA path; required for BAM samples")
	fs.IntVar(&opts.Mapq, "mapq", opts.Mapq, "samtools mpileup -q: reads with MAPQ below this level are skipped")
	fs.IntVar(&opts.BaseQual, "baq", opts.BaseQual, "samtools mpileup -Q: bases with quality below this level are skipped")
	fs.IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "samtools mpileup -d: maximum per-file depth")
	fs.StringVar(&opts.Format, "format", opts.Format, "Output format; 'tsv' and 'tsv-bgz' supported")
	fs.IntVar(&opts.Parallelism, "parallelism", opts.Parallelism, "Maximum number of samples to process simultaneously; 0 = runtime.NumCPU()")
	fs.StringVar(&opts.TempDir, "temp-dir", opts.TempDir, "Directory to write temporary files to (default os.TempDir())")
	fs.StringVar(&opts.Samtools, "samtools", opts.Samtools, "samtools binary; a path, or a name looked up in $PATH")
	return fs.String("out", report.StdoutPath, "Output path; '-' for stdout")
}

// run generates the report described by the positional arguments.
func run(ctx context.Context, opts *report.Opts, outPath string, positionalArgs []string) error {
	if len(positionalArgs) != 1 {
		if len(positionalArgs) == 0 {
			return fmt.Errorf("missing positional argument (sample configuration path required)")
		}
		return fmt.Errorf("too many positional arguments (only the sample configuration path expected); please check flag syntax: '%s'", strings.Join(positionalArgs, " "))
	}
	return report.RunFromConfig(ctx, positionalArgs[0], outPath, opts)
}

func bioPileupReportUsage() {
	fmt.Printf("Usage: %s [OPTIONS] sample.conf\n", os.Args[0])
	fmt.Printf("Other options:\n")
	flag.PrintDefaults()
}

func main() {
	opts, err := defaultOpts()
	if err != nil {
		log.Fatalf("bio-pileup-report: %v", err)
	}
	outPath := registerFlags(flag.CommandLine, &opts)
	flag.Usage = bioPileupReportUsage
	shutdown := grail.Init()
	defer shutdown()

	ctx := vcontext.Background()
	if err = run(ctx, &opts, *outPath, flag.Args()); err != nil {
		log.Fatalf("bio-pileup-report: %v", err)
	}
}
