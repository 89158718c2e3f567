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
Package mpileup decodes the text pileup format written by "samtools mpileup"
into per-position base, insertion, and deletion counts.

Each line is a single reference position:
  chrom  pos(1-based)  ref  depth  read-bases  base-quals
The depth and base-quals columns are ignored; depth is recomputed from the
read-bases column, which has the grammar
  read_base_field := token*
  token     := '.' | ',' | [ACGTNacgtn] | '*' | readstart | readend | insertion | deletion
  readstart := '^' any_char
  readend   := '$'
  insertion := '+' digits base_char{digits}
  deletion  := '-' digits base_char{digits}
Case encodes strand: '.' and uppercase letters are forward-strand reads, ','
and lowercase letters are reverse-strand reads.

A deletion token at position P describes bases missing from P+1 onward, so
reports conventionally show it on the following row.  DeletionCarry holds it
until then.
*/
package mpileup
