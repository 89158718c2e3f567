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
package mpileup

// TokenKind identifies a read-bases grammar production.
type TokenKind int

const (
	// TokenRefFwd is '.', a forward-strand reference match.
	TokenRefFwd TokenKind = iota
	// TokenRefRev is ',', a reverse-strand reference match.
	TokenRefRev
	// TokenBase is one of ACGTNacgtn.
	TokenBase
	// TokenContinuation is '*', a deletion declared at an earlier position
	// which still spans this one.
	TokenContinuation
	// TokenInsertion is '+' <len> <seq>.
	TokenInsertion
	// TokenDeletion is '-' <len> <seq>.
	TokenDeletion
	// TokenReadStart is '^' followed by a mapping-quality byte.
	TokenReadStart
	// TokenReadEnd is '$'.
	TokenReadEnd
)

var tokenKindNames = [...]string{"ref-fwd", "ref-rev", "base", "continuation", "insertion", "deletion", "read-start", "read-end"}

func (k TokenKind) String() string {
	if int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// Token is a single element of a read-bases column.
type Token struct {
	Kind TokenKind
	// Offset is the 0-based position of the token's first byte.
	Offset int
	// Char is the token byte for single-byte tokens, and the mapping-quality
	// byte for TokenReadStart.
	Char byte
	// Seq is the indel body for TokenInsertion/TokenDeletion, with its original
	// case.  It's a substring of the tokenized column.
	Seq string
}

// isBaseChar is true for the letters allowed as observations and inside indel
// bodies.
var isBaseChar = func() (t [256]bool) {
	for _, c := range []byte("ACGTNacgtn") {
		t[c] = true
	}
	return
}()

// Tokenizer splits a read-bases column into Tokens in a single left-to-right
// pass.  Usage:
//   tz := NewTokenizer(col)
//   for tz.Scan() {
//     tok := tz.Token()
//     ...
//   }
//   if err := tz.Err(); err != nil { ... }
type Tokenizer struct {
	col string
	pos int
	tok Token
	err error
}

// NewTokenizer returns a Tokenizer for the given read-bases column.
func NewTokenizer(col string) *Tokenizer {
	return &Tokenizer{col: col}
}

// Reset makes the Tokenizer start over on a new column.
func (tz *Tokenizer) Reset(col string) {
	tz.col = col
	tz.pos = 0
	tz.tok = Token{}
	tz.err = nil
}

// Token returns the most recently scanned token.
func (tz *Tokenizer) Token() Token {
	return tz.tok
}

// Err returns the first grammar error, if any.  Scan returns false after an
// error.
func (tz *Tokenizer) Err() error {
	return tz.err
}

// Scan advances to the next token.  It returns false at the end of the column
// or on error.
func (tz *Tokenizer) Scan() bool {
	if tz.err != nil || tz.pos >= len(tz.col) {
		return false
	}
	col := tz.col
	start := tz.pos
	c := col[start]
	tz.tok = Token{Offset: start, Char: c}
	switch c {
	case '.':
		tz.tok.Kind = TokenRefFwd
	case ',':
		tz.tok.Kind = TokenRefRev
	case '*':
		tz.tok.Kind = TokenContinuation
	case '$':
		tz.tok.Kind = TokenReadEnd
	case '^':
		if start+1 == len(col) {
			tz.err = &DecodeError{Offset: start, Char: c, Msg: "read-start marker without mapping quality"}
			return false
		}
		tz.tok.Kind = TokenReadStart
		tz.tok.Char = col[start+1]
		tz.pos = start + 2
		return true
	case '+', '-':
		return tz.scanIndel()
	default:
		if !isBaseChar[c] {
			tz.err = &DecodeError{Offset: start, Char: c, Msg: "invalid read-base character"}
			return false
		}
		tz.tok.Kind = TokenBase
	}
	tz.pos = start + 1
	return true
}

// scanIndel handles '+'/'-' <digits> <seq>.
func (tz *Tokenizer) scanIndel() bool {
	col := tz.col
	start := tz.pos
	if col[start] == '+' {
		tz.tok.Kind = TokenInsertion
	} else {
		tz.tok.Kind = TokenDeletion
	}
	pos := start + 1
	seqLen := 0
	for ; pos < len(col); pos++ {
		d := col[pos]
		if d < '0' || d > '9' {
			break
		}
		seqLen = seqLen*10 + int(d-'0')
		// No valid length can exceed what's left of the column, so this also
		// guards against overflow.
		if seqLen > len(col) {
			tz.err = &DecodeError{Offset: start, Char: col[start], Msg: "indel length exceeds read-bases column"}
			return false
		}
	}
	if pos == start+1 {
		tz.err = &DecodeError{Offset: start, Char: col[start], Msg: "indel marker without length"}
		return false
	}
	if seqLen == 0 {
		tz.err = &DecodeError{Offset: start, Char: col[start], Msg: "zero-length indel"}
		return false
	}
	seqEnd := pos + seqLen
	if seqEnd > len(col) {
		tz.err = &DecodeError{Offset: len(col), Msg: "truncated indel sequence"}
		return false
	}
	for i := pos; i < seqEnd; i++ {
		if !isBaseChar[col[i]] {
			tz.err = &DecodeError{Offset: i, Char: col[i], Msg: "invalid character in indel sequence"}
			return false
		}
	}
	tz.tok.Seq = col[pos:seqEnd]
	tz.pos = seqEnd
	return true
}
