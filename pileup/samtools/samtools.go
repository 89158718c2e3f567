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

// Package samtools runs "samtools mpileup" to turn BAM files into the text
// pileup format read by package mpileup.
package samtools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/pileupreport/interval"
	"v.io/x/lib/envvar"
	"v.io/x/lib/lookpath"
)

// DefaultBinary is the samtools executable name looked up in $PATH.
const DefaultBinary = "samtools"

// ExternalToolError is returned when samtools can't be started or exits with
// a nonzero status.
type ExternalToolError struct {
	// Args is the full command line, starting with the binary path.
	Args []string
	Err  error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("samtools: %s: %v", strings.Join(e.Args, " "), e.Err)
}

// MpileupOpts holds the "samtools mpileup" parameters.
type MpileupOpts struct {
	// Reference is the FASTA path passed to -f.  Required.
	Reference string
	// MinMapQ is passed to -q.
	MinMapQ int
	// MinBaseQ is passed to -Q.
	MinBaseQ int
	// MaxDepth is passed to -d.
	MaxDepth int
}

// DefaultMpileupOpts matches the thresholds this pipeline has always used.
var DefaultMpileupOpts = MpileupOpts{
	MinMapQ:  0,
	MinBaseQ: 0,
	MaxDepth: 1000000,
}

// Args returns the samtools arguments (not including the binary) for one
// mpileup invocation.  Anomalous read pairs are kept (-A) and BAQ
// computation is disabled (-B).  region is omitted when empty.
func (o MpileupOpts) Args(bamPath, region string) []string {
	args := []string{
		"mpileup", "-A", "-B",
		"-f", o.Reference,
		"-q", strconv.Itoa(o.MinMapQ),
		"-Q", strconv.Itoa(o.MinBaseQ),
		"-d", strconv.Itoa(o.MaxDepth),
	}
	if region != "" {
		args = append(args, "-r", region)
	}
	return append(args, bamPath)
}

// Runner invokes a resolved samtools binary.
type Runner struct {
	// Path is the absolute path of the samtools binary.
	Path string
	// Stderr receives samtools' stderr.  Defaults to os.Stderr.
	Stderr io.Writer
}

// NewRunner resolves binary, either a path or a name to be looked up in
// $PATH.
func NewRunner(binary string) (*Runner, error) {
	if binary == "" {
		binary = DefaultBinary
	}
	if strings.ContainsRune(binary, os.PathSeparator) {
		if _, err := os.Stat(binary); err != nil {
			return nil, errors.E(errors.NotExist, err, "samtools binary", binary)
		}
		return &Runner{Path: binary, Stderr: os.Stderr}, nil
	}
	path, err := lookpath.Look(envvar.SliceToMap(os.Environ()), binary)
	if err != nil {
		return nil, errors.E(errors.NotExist, err, "samtools binary", binary)
	}
	return &Runner{Path: path, Stderr: os.Stderr}, nil
}

// run executes samtools once, streaming its stdout to out.
func (r *Runner) run(ctx context.Context, args []string, out io.Writer) error {
	log.Debug.Printf("samtools: running %s %s", r.Path, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, r.Path, args...)
	cmd.Stdout = out
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return &ExternalToolError{Args: append([]string{r.Path}, args...), Err: err}
	}
	return nil
}

// Mpileup writes the pileup of bamPath to out.  With no regions, samtools
// runs once over the whole file.  Otherwise it runs once per region, in the
// given order, and the outputs are concatenated; overlapping regions
// therefore produce repeated lines.  Regions on contigs missing from the BAM
// header are skipped with a warning.
func (r *Runner) Mpileup(ctx context.Context, opts MpileupOpts, bamPath string, regions []interval.PileupFilterInterval, out io.Writer) error {
	if opts.Reference == "" {
		return errors.E(errors.Invalid, "samtools mpileup of", bamPath, "requires a reference FASTA")
	}
	if len(regions) == 0 {
		return r.run(ctx, opts.Args(bamPath, ""), out)
	}
	contigs, err := ReadContigs(ctx, bamPath)
	if err != nil {
		return err
	}
	for _, region := range regions {
		if _, ok := contigs[region.Chrom]; !ok {
			log.Printf("samtools: %s: contig %s not in BAM header, skipping region %s",
				bamPath, region.Chrom, region.SamtoolsRegion())
			continue
		}
		if err := r.run(ctx, opts.Args(bamPath, region.SamtoolsRegion()), out); err != nil {
			return err
		}
	}
	return nil
}

// Version returns the first line of "samtools --version".
func (r *Runner) Version(ctx context.Context) (string, error) {
	var buf bytes.Buffer
	if err := r.run(ctx, []string{"--version"}, &buf); err != nil {
		return "", err
	}
	line := buf.String()
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return line, nil
}

// ReadContigs returns the reference lengths listed in the header of the BAM
// file at path, keyed by name.
func ReadContigs(ctx context.Context, path string) (contigs map[string]int, err error) {
	var f file.File
	if f, err = file.Open(ctx, path); err != nil {
		return nil, err
	}
	defer file.CloseAndReport(ctx, f, &err)
	br, err := bam.NewReader(f.Reader(ctx), 1)
	if err != nil {
		return nil, errors.E(err, "reading BAM header", path)
	}
	defer func() {
		if e := br.Close(); e != nil && err == nil {
			err = e
		}
	}()
	refs := br.Header().Refs()
	contigs = make(map[string]int, len(refs))
	for _, ref := range refs {
		contigs[ref.Name()] = ref.Len()
	}
	return contigs, nil
}
