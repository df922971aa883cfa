// Package record holds the row-level data types shared by every pipeline
// stage: the tagged Value produced once at ingest, the immutable
// SourceRecord read by mappings, and the StandardizedRecord they produce.
package record
