// Package engine runs the standardization pipeline over one batch:
// dialect detection, auto-mapping, transformation, derivation and
// validation against a tool profile.
//
// An Engine is built once from immutable registry and catalog values and is
// safe for concurrent use. Only an empty batch or an unknown tool id fails a
// call; every other problem is reported in the result.
package engine
