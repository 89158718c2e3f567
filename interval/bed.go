package interval

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	gunsafe "github.com/grailbio/base/unsafe"
	"github.com/klauspost/compress/gzip"
)

// PosType is the type used to represent interval coordinates.  int32 should be
// wide enough for some time to come, since that's what BAM is limited to.
type PosType int32

// PosTypeMax is the maximum value that can be represented by a PosType.
const PosTypeMax = math.MaxInt32

// RegionParseError is returned when a BED row can't be interpreted as an
// interval.
type RegionParseError struct {
	// Line is the 1-based line number in the BED input.
	Line int
	Msg  string
}

func (e *RegionParseError) Error() string {
	return fmt.Sprintf("interval: BED line %d: %s", e.Line, e.Msg)
}

// getTokens identifies up to the first len(tokens) tab-delimited tokens from
// curLine, returning the number of tokens saved.  Unlike whitespace-delimited
// scanning, this preserves spaces inside the optional name column.  Trailing
// whitespace (including '\r') is ignored.
func getTokens(tokens [][]byte, curLine []byte) int {
	lineLen := len(curLine)
	for lineLen != 0 && curLine[lineLen-1] <= ' ' {
		lineLen--
	}
	if lineLen == 0 {
		return 0
	}
	curLine = curLine[:lineLen]
	pos := 0
	for tokenIdx := range tokens {
		posEnd := pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] == '\t' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
		if posEnd == lineLen {
			return tokenIdx + 1
		}
		pos = posEnd + 1
	}
	return len(tokens)
}

// isHeaderLine returns true for BED comment, 'track', and 'browser' lines.
func isHeaderLine(curLine []byte) bool {
	return (len(curLine) != 0 && curLine[0] == '#') ||
		bytes.HasPrefix(curLine, []byte("track")) ||
		bytes.HasPrefix(curLine, []byte("browser"))
}

// Entry represents a single BED row, with 0-based half-open coordinates.
type Entry struct {
	Chrom  string
	Start0 PosType
	End    PosType
	// Label is the optional fourth BED column.  Empty if absent.
	Label string
}

// LoadBED loads every interval in a BED stream, in input order.  Rows need not
// be sorted, and overlapping rows are kept separately.  Only the first four
// columns are read.
func LoadBED(reader io.Reader) (entries []Entry, err error) {
	scanner := bufio.NewScanner(reader)
	var tokens [4][]byte
	lineIdx := 0
	totBases := 0
	for scanner.Scan() {
		lineIdx++
		curLine := scanner.Bytes()
		if isHeaderLine(curLine) {
			continue
		}
		nToken := getTokens(tokens[:], curLine)
		if nToken < 3 {
			if nToken == 0 {
				continue
			}
			err = &RegionParseError{Line: lineIdx, Msg: "fewer than 3 columns"}
			return
		}
		var parsedStart int
		if parsedStart, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			err = &RegionParseError{Line: lineIdx, Msg: fmt.Sprintf("invalid start coordinate %q", tokens[1])}
			return
		}
		if parsedStart < 0 {
			err = &RegionParseError{Line: lineIdx, Msg: fmt.Sprintf("negative start coordinate %d", parsedStart)}
			return
		}
		var parsedEnd int
		if parsedEnd, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			err = &RegionParseError{Line: lineIdx, Msg: fmt.Sprintf("invalid end coordinate %q", tokens[2])}
			return
		}
		// End+1 must still fit, since LabelLookup intervals are closed at End+1.
		if (parsedEnd < parsedStart) || (parsedEnd >= PosTypeMax) {
			err = &RegionParseError{Line: lineIdx, Msg: fmt.Sprintf("invalid coordinate pair [%d, %d)", parsedStart, parsedEnd)}
			return
		}
		// The chromosome and label must be copied, since they refer to bytes on
		// curLine that will be overwritten by the next Scan().
		entry := Entry{
			Chrom:  string(tokens[0]),
			Start0: PosType(parsedStart),
			End:    PosType(parsedEnd),
		}
		if nToken == 4 {
			entry.Label = string(tokens[3])
		}
		entries = append(entries, entry)
		totBases += parsedEnd - parsedStart
	}
	if err = scanner.Err(); err != nil {
		return
	}
	log.Printf("BED loaded, %d interval(s), %d base(s) listed.\n", len(entries), totBases)
	return
}

// LoadBEDFromPath is a wrapper for LoadBED that takes a path instead of an
// io.Reader.  Gzipped files are decompressed.
func LoadBEDFromPath(ctx context.Context, path string) (entries []Entry, err error) {
	var infile file.File
	if infile, err = file.Open(ctx, path); err != nil {
		return
	}
	defer func() {
		if cerr := infile.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	reader := io.Reader(infile.Reader(ctx))
	switch fileio.DetermineType(path) {
	case fileio.Gzip:
		var gz *gzip.Reader
		if gz, err = gzip.NewReader(reader); err != nil {
			return
		}
		defer func() {
			if cerr := gz.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}()
		reader = gz
	}
	return LoadBED(reader)
}

// ParseRegionString parses a region string of one of the forms
//   [contig ID]:[1-based first pos]-[last pos]
//   [contig ID]:[1-based pos]
//   [contig ID]
// returning the equivalent BED entry.  The interval [0, PosTypeMax - 1) is
// returned if there is no positional restriction.
func ParseRegionString(region string) (result Entry, err error) {
	if len(region) == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty region string")
		return
	}
	colonPos := strings.IndexByte(region, ':')
	if colonPos == -1 {
		result.Chrom = region
		result.Start0 = 0
		result.End = PosTypeMax - 1
		return
	}
	if colonPos == 0 {
		err = fmt.Errorf("interval.ParseRegionString: empty contig ID")
		return
	}
	result.Chrom = region[0:colonPos]
	rangeStr := region[colonPos+1:]
	dashPos := strings.IndexByte(rangeStr, '-')
	if dashPos == -1 {
		var pos1 int64
		if pos1, err = strconv.ParseInt(rangeStr, 10, 32); err != nil {
			return
		}
		if pos1 <= 0 || pos1 >= PosTypeMax {
			err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", rangeStr)
			return
		}
		result.Start0 = PosType(pos1 - 1)
		result.End = PosType(pos1)
		return
	}
	start1Str := rangeStr[:dashPos]
	endStr := rangeStr[dashPos+1:]
	var start1 int
	if start1, err = strconv.Atoi(start1Str); err != nil {
		return
	}
	if start1 <= 0 {
		err = fmt.Errorf("interval.ParseRegionString: position %v in region string out of range", start1Str)
		return
	}
	var end int
	if end, err = strconv.Atoi(endStr); err != nil {
		return
	}
	// As with BED rows, End+1 must be representable.
	if end < start1 || end >= PosTypeMax {
		err = fmt.Errorf("interval.ParseRegionString: invalid range string %v", rangeStr)
		return
	}
	result.Start0 = PosType(start1 - 1)
	result.End = PosType(end)
	return
}
