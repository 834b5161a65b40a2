// Package pipeline drives one end-to-end normalization run.
//
// A run pulls raw records from a source one at a time, classifies and
// canonicalizes each, and appends it to the output array. There is never
// more than one record in flight, so a slow sink throttles the source.
//
// Parse faults are recoverable and only show up in the Summary. Transport
// faults end the run; records written before the fault stay on disk and the
// output array is still terminated.
package pipeline
