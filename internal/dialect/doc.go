// Package dialect holds the catalog of named CAD/RMS export dialects and
// detects which one produced a batch.
//
// The catalog is plain data shipped as embedded YAML. Each dialect has a
// fingerprint (columns that must all be present) and per-field extraction
// rules that pre-populate a mapping before the auto-mapping resolver runs.
// Detection is exact and priority ordered: a dialect missing any fingerprint
// column is never selected.
package dialect
