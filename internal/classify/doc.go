// Package classify implements the classification and normalization engine.
//
// Every raw tracer record goes through two steps:
//
// Preprocessing (Preprocess):
// symbolName becomes name, a location is recovered from the first present of
// destructuringPattern, referenceLocation or firstDeclaration, flags and
// display are pulled out of the record, recursionId is dropped.
//
// Classification (Engine.Classify):
// the ordered rule table is evaluated top to bottom and the first rule whose
// predicate matches builds the output record. The last rule always matches,
// so Classify is total: exactly one output record per input record.
//
// Rule order is load-bearing. Structural shape markers outrank flags, flags
// outrank name conventions, and the JSX display heuristic only runs after
// every structural interpretation had its chance.
//
// The engine holds no mutable state and is safe for concurrent use.
package classify
