// Package diagnostic provides structured warnings, errors and notes for
// the standardization pipeline.
//
// Key capabilities:
//   - Unmapped field warnings with ranked column suggestions
//   - Row-level transform and derivation warnings carrying the raw value
//   - Mapping file validation errors
//   - Explanation of mapping decisions
package diagnostic
