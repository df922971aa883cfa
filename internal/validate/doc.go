// Package validate checks standardized records against a tool profile.
//
// Missing required fields are errors and make a record invalid. Everything
// else the gate notices (a non-numeric or out-of-range coordinate, a date
// or time that did not normalize, a value that misses its field's pattern)
// is a warning and never affects validity.
package validate
