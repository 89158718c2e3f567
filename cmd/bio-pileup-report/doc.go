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

/*
Given a sample configuration file, bio-pileup-report reports the number of
reads supporting each base, insertion, and deletion at every covered position
of each sample.

Each configuration line is "barcode<TAB>path".  Paths ending in ".bam" are
converted with "samtools mpileup -A -B" (-reference is then required).
Paths containing ".pileup" are read directly, and may be gzipped.  Output
positions are 1-based.

Sample usage:
bio-pileup-report \
    --bed my-regions.bed \
    --names \
    --keep-strand \
    --reference hg19.fa \
    --out report.tsv \
    samples.conf

With --bed, BAM samples are piled up once per BED interval (so overlapping
intervals produce repeated lines), and pileup samples are restricted to lines
inside some interval.  The BED start is converted to 1-based and the end is
kept, as samtools does for -r.  The Name column added by --names instead
treats the BED end as inclusive.

A deletion is reported on the line after the one where it starts, following
the "*:n" count of reads whose deletion spans that line.

Default values of --samtools, --temp-dir, and --parallelism can be set with
the PILEUP_REPORT_SAMTOOLS, PILEUP_REPORT_TEMP_DIR, and
PILEUP_REPORT_PARALLELISM environment variables.
*/
package main
