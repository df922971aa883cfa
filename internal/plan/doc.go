// Package plan provides the auto-mapping resolver that turns a batch's
// source columns into a FieldMapping for a list of canonical targets.
//
// Resolution pipeline:
//  1. Keep the seed mapping (caller override + dialect pre-map) verbatim
//  2. For the remaining targets, run each tier across all of them:
//     exact name, alias, coordinate heuristic, scored (sample rows only)
//  3. A column consumed by one target is never offered to another
//  4. Emit diagnostics: how each field mapped, and ranked suggestions for
//     targets left unmapped
package plan
