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

// DeletionCarry defers each record's deletions to the next emitted row.
//
// A DeletionCarry must be owned by a single processing loop, and should be
// Reset whenever that loop starts on a new sample.
type DeletionCarry struct {
	pending IndelCounts
}

// Swap returns the deletions carried from the previous record passed to Swap
// (nil for the first), and holds rec.Deletions for the next call.  The caller
// must not modify rec.Deletions afterwards.
func (c *DeletionCarry) Swap(rec *Record) IndelCounts {
	prev := c.pending
	c.pending = rec.Deletions
	return prev
}

// Pending returns the deletions that the next Swap call will return.
func (c *DeletionCarry) Pending() IndelCounts {
	return c.pending
}

// Reset drops any pending deletions.
func (c *DeletionCarry) Reset() {
	c.pending = nil
}
