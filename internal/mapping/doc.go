// Package mapping provides the FieldMapping model, its YAML persistence
// format, extraction rules, and validation against the canonical registry.
//
// A FieldMapping is the reviewed answer to "which source column feeds which
// canonical field". Saving it to YAML turns a best-effort auto-mapping into
// a deterministic, replayable one.
//
// # Key capabilities
//
//   - Name a source by column or by position
//   - Extract part of a column with slice and split rules
//   - Attach a per-field transform (type, source/target format, text case)
//   - Record where every entry came from (override, dialect, tier)
//   - Reject fan-out: one direct source feeding two targets
//
// # Schema Overview
//
//	version: "1"
//	dialect: tyler-newworld
//	fields:
//	  incidentId:
//	    source: Master_Incident_Number
//	    origin: dialect
//	  incidentDate:
//	    source: Response_Date
//	    rule: {kind: split, part: date}
//	    transform: {type: date, source_format: auto}
//	  unitId:
//	    source: 4               # positional column
//	    transform: {type: text, text_case: upper}
//
// # Priority Order
//
// When a mapping is assembled, earlier layers win:
//  1. caller override (a loaded file)
//  2. dialect pre-mapping
//  3. auto-mapping tiers (exact, alias, heuristic, scored)
package mapping
