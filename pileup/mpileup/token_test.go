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

import (
	"testing"

	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
)

func tokenize(col string) ([]Token, error) {
	var toks []Token
	tz := NewTokenizer(col)
	for tz.Scan() {
		toks = append(toks, tz.Token())
	}
	return toks, tz.Err()
}

func TestTokenizerProductions(t *testing.T) {
	toks, err := tokenize("^+.$,+2AC-1t*Nn^$a")
	assert.NoError(t, err)
	expected := []Token{
		{Kind: TokenReadStart, Offset: 0, Char: '+'},
		{Kind: TokenRefFwd, Offset: 2, Char: '.'},
		{Kind: TokenReadEnd, Offset: 3, Char: '$'},
		{Kind: TokenRefRev, Offset: 4, Char: ','},
		{Kind: TokenInsertion, Offset: 5, Char: '+', Seq: "AC"},
		{Kind: TokenDeletion, Offset: 9, Char: '-', Seq: "t"},
		{Kind: TokenContinuation, Offset: 12, Char: '*'},
		{Kind: TokenBase, Offset: 13, Char: 'N'},
		{Kind: TokenBase, Offset: 14, Char: 'n'},
		{Kind: TokenReadStart, Offset: 15, Char: '$'},
		{Kind: TokenBase, Offset: 17, Char: 'a'},
	}
	assert.EQ(t, toks, expected)
}

func TestTokenizerMultiDigitLength(t *testing.T) {
	toks, err := tokenize("+12ACGTACGTACGTg")
	assert.NoError(t, err)
	assert.EQ(t, len(toks), 2)
	expect.EQ(t, toks[0].Kind, TokenInsertion)
	expect.EQ(t, toks[0].Seq, "ACGTACGTACGT")
	// The byte after the indel body is an ordinary observation.
	expect.EQ(t, toks[1].Kind, TokenBase)
	expect.EQ(t, toks[1].Char, byte('g'))
}

func TestTokenizerEmpty(t *testing.T) {
	toks, err := tokenize("")
	assert.NoError(t, err)
	expect.EQ(t, len(toks), 0)
}

func TestTokenizerReset(t *testing.T) {
	tz := NewTokenizer("X")
	expect.False(t, tz.Scan())
	expect.NotNil(t, tz.Err())
	tz.Reset(".,")
	n := 0
	for tz.Scan() {
		n++
	}
	expect.NoError(t, tz.Err())
	expect.EQ(t, n, 2)
}

func TestTokenizerErrors(t *testing.T) {
	tests := []struct {
		col    string
		offset int
		char   byte
	}{
		{"..X", 2, 'X'},
		{"^", 0, '^'},
		{".+", 1, '+'},
		{"-A", 0, '-'},
		{"+0", 0, '+'},
		{"+3AC", 4, 0},
		{"+2AX", 3, 'X'},
		{"-2*A", 2, '*'},
		{"+99999999999999999999A", 0, '+'},
		{"a b", 1, ' '},
	}
	for _, test := range tests {
		_, err := tokenize(test.col)
		derr, ok := err.(*DecodeError)
		assert.True(t, ok, "col %q: got error %v", test.col, err)
		expect.EQ(t, derr.Offset, test.offset, "col %q", test.col)
		expect.EQ(t, derr.Char, test.char, "col %q", test.col)
	}
}

func TestTokenKindString(t *testing.T) {
	expect.EQ(t, TokenInsertion.String(), "insertion")
	expect.EQ(t, TokenReadEnd.String(), "read-end")
	expect.EQ(t, TokenKind(100).String(), "unknown")
}
