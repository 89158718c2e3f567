/*Package interval loads genomic intervals from BED files and answers
  position-membership queries against them.
  Unlike a merged interval-union, a RegionIndex keeps every interval
  separately (overlaps included, in input order), since each one may carry
  its own label.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
