// Package harness runs program scenarios and compares their outcomes.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: hello
//	description: "Prints a greeting"
//	source: "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>."
//	input: ""
//	optimize: true
//	memory_size: 30000
//	max_steps: 100000
//	cross_check: true
//	expect:
//	  output: "H"
//	  error: pointer_out_of_bounds
//	  instructions: 12
//
// Exactly one of source and source_file is required; source_file is
// relative to the scenario file. At least one of expect.output and
// expect.error is required. Unknown fields are rejected.
//
// # Error Kinds
//
// expect.error names a build or runtime failure:
//
//   - unmatched_closing_bracket, unmatched_opening_bracket: build failed
//   - empty_program: the source has no instructions
//   - pointer_out_of_bounds, io_failure: the run failed
//   - step_limit: the run exceeded max_steps (default 1,000,000)
//
// An omitted expect.error means the run must succeed.
//
// # Golden Files
//
// RunWithGolden snapshots the listing, output, step count and error kind
// as canonical JSON and compares it with testdata/golden/<name>.golden.
// Step counts depend on optimization, so goldens pin the optimizer's
// behavior as well as the program's.
package harness
