// Package preflight provides readiness checks for the binaries, directories,
// and services tldw depends on.
//
// These checks run in two contexts:
//   - `tldw serve` and `tldw watch` call RunAll before starting and refuse to
//     start when a required check fails.
//   - `tldw status` renders every check, including the LLM ping, as a table.
package preflight
