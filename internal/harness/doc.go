// Package harness runs conformance scenarios against the normalization
// pipeline.
//
// A scenario is a YAML file holding a small raw dump, the mode to read it
// in, and assertions on the run. The harness writes the dump to a scratch
// directory (compressed if asked), runs the full pipeline with a kind index,
// reads the output back and evaluates the assertions.
//
// # Scenario Format
//
//	name: aliased_union
//	description: "Union with a symbol name is an alias"
//	mode: line            # line (default) or array
//	codec: gz             # optional input compression: gz, br or zst
//	input: |
//	  [{"id":1,"symbolName":"Foo","unionTypes":[2,3]},
//	  {"id":2,"flags":["Object"]}]
//	assertions:
//	  - type: summary
//	    items: 2
//	    dropped: 0
//	    truncated: false
//	  - type: kind_count
//	    kind: AliasedUnion
//	    count: 1
//	  - type: output_contains
//	    record: '{"id":1,"kind":"AliasedUnion","name":"Foo","count":2,"types":[2,3]}'
//	  - type: output_order
//	    ids: [1, 2]
//
// # Assertion Types
//
//   - summary: checks the item count, dropped count and truncation flag (each optional)
//   - kind_count: checks the number of records of one kind, in the run summary and in the index
//   - output_contains: checks that a normalized record appears byte-for-byte in the output
//   - output_order: checks the output ids, in order
//   - run_error: checks that the run failed with a message containing a substring
//
// # Golden Files
//
// The normalized output of a scenario can be pinned in
// golden/<scenario-file-name>.golden next to the scenario file.
package harness
