// Package transform applies a FieldMapping to source records, producing
// standardized records keyed by canonical field id.
//
// Values are normalized by semantic type: ISO dates, 24-hour HH:MM:SS
// times, ISO datetimes, float coordinates and numbers, and NFKC text with
// the configured case. A value that fails to convert keeps its raw form
// and yields a row warning; nothing here aborts a batch.
package transform
