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
	"fmt"
)

// MalformedLineError is returned when a line doesn't have the six-column
// pileup layout, or its position column isn't a valid coordinate.
type MalformedLineError struct {
	// NField is the number of tab-separated fields found.
	NField int
	Msg    string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("mpileup: malformed line (%d field(s)): %s", e.NField, e.Msg)
}

// DecodeError is returned when the read-bases column doesn't follow the
// pileup grammar.
type DecodeError struct {
	// Offset is the 0-based byte offset of the problem within the read-bases
	// column.
	Offset int
	// Char is the offending byte, or 0 if the column ended early.
	Char byte
	Msg  string
}

func (e *DecodeError) Error() string {
	if e.Char == 0 {
		return fmt.Sprintf("mpileup: read-base offset %d: %s", e.Offset, e.Msg)
	}
	return fmt.Sprintf("mpileup: read-base offset %d (%q): %s", e.Offset, e.Char, e.Msg)
}
