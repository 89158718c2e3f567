package interval

import (
	"strconv"
	"strings"
)

// Convention selects how 0-based half-open BED coordinates are converted into
// the closed 1-based intervals stored in a RegionIndex.
type Convention int

const (
	// PileupFilter converts [start0, end) to [start0+1, end].  This is the
	// samtools region-string convention, used both to restrict pileup
	// generation and to filter existing pileup lines.
	PileupFilter Convention = iota
	// LabelLookup converts [start0, end) to [start0+1, end+1].  It is used to
	// attach BED names to positions already in 1-based pileup output.
	LabelLookup
)

func (c Convention) String() string {
	switch c {
	case PileupFilter:
		return "pileup-filter"
	case LabelLookup:
		return "label-lookup"
	}
	return "Convention(" + strconv.Itoa(int(c)) + ")"
}

// Region is a closed, 1-based interval on a single chromosome.
type Region struct {
	Chrom string
	// Start and End are both inclusive.
	Start PosType
	End   PosType
	Label string
}

// Contains returns true iff Start <= pos <= End.
func (r Region) Contains(pos PosType) bool {
	return r.Start <= pos && pos <= r.End
}

// PileupFilterInterval is a Region produced under the PileupFilter convention.
type PileupFilterInterval Region

// LabelLookupInterval is a Region produced under the LabelLookup convention.
type LabelLookupInterval Region

// PileupFilterInterval converts the entry to [Start0+1, End].
func (e Entry) PileupFilterInterval() PileupFilterInterval {
	return PileupFilterInterval{Chrom: e.Chrom, Start: e.Start0 + 1, End: e.End, Label: e.Label}
}

// LabelLookupInterval converts the entry to [Start0+1, End+1].
func (e Entry) LabelLookupInterval() LabelLookupInterval {
	return LabelLookupInterval{Chrom: e.Chrom, Start: e.Start0 + 1, End: e.End + 1, Label: e.Label}
}

// SamtoolsRegion renders the interval as a samtools -r argument,
// "chrom:start-end".
func (r PileupFilterInterval) SamtoolsRegion() string {
	return r.Chrom + ":" + strconv.Itoa(int(r.Start)) + "-" + strconv.Itoa(int(r.End))
}

// RegionIndex maps each chromosome to its intervals, in input order.  It is
// immutable after construction, so it can be shared between goroutines.
type RegionIndex struct {
	conv    Convention
	byChrom map[string][]Region
	// chroms lists chromosomes in first-seen order.
	chroms []string
}

// NewRegionIndex builds an index over entries, converting coordinates with
// the given convention.  Chromosomes need not be contiguous in the input.
func NewRegionIndex(entries []Entry, conv Convention) *RegionIndex {
	idx := &RegionIndex{
		conv:    conv,
		byChrom: make(map[string][]Region),
	}
	for _, e := range entries {
		var r Region
		if conv == LabelLookup {
			r = Region(e.LabelLookupInterval())
		} else {
			r = Region(e.PileupFilterInterval())
		}
		regions, found := idx.byChrom[e.Chrom]
		if !found {
			idx.chroms = append(idx.chroms, e.Chrom)
		}
		idx.byChrom[e.Chrom] = append(regions, r)
	}
	return idx
}

// Convention returns the coordinate convention the index was built with.
func (idx *RegionIndex) Convention() Convention {
	return idx.conv
}

// Chroms returns the indexed chromosomes in first-seen order.
func (idx *RegionIndex) Chroms() []string {
	return idx.chroms
}

// Regions returns every interval on chrom, in input order.
func (idx *RegionIndex) Regions(chrom string) []Region {
	return idx.byChrom[chrom]
}

// Len returns the total number of intervals.
func (idx *RegionIndex) Len() int {
	n := 0
	for _, regions := range idx.byChrom {
		n += len(regions)
	}
	return n
}

// RegionsFor returns every interval on chrom containing pos, in input order.
// An unknown chromosome yields an empty result.
func (idx *RegionIndex) RegionsFor(chrom string, pos PosType) []Region {
	var result []Region
	for _, r := range idx.byChrom[chrom] {
		if r.Contains(pos) {
			result = append(result, r)
		}
	}
	return result
}

// Contains returns true iff at least one interval on chrom contains pos.
func (idx *RegionIndex) Contains(chrom string, pos PosType) bool {
	for _, r := range idx.byChrom[chrom] {
		if r.Contains(pos) {
			return true
		}
	}
	return false
}

// Labels returns the comma-joined labels of every interval containing pos.
func (idx *RegionIndex) Labels(chrom string, pos PosType) string {
	matches := idx.RegionsFor(chrom, pos)
	switch len(matches) {
	case 0:
		return ""
	case 1:
		return matches[0].Label
	}
	labels := make([]string, len(matches))
	for i, r := range matches {
		labels[i] = r.Label
	}
	return strings.Join(labels, ",")
}
