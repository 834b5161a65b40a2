// Package record provides the ordered JSON object used for both raw tracer
// records and normalized output records.
//
// Members keep their raw JSON bytes, so anything the classifier does not
// touch is written back exactly as it was read (after compaction). Member
// order is preserved because the output field order depends on the order in
// which members were first introduced.
//
// This package imports nothing internal. classify, source, sink and pipeline
// all build on it.
package record
