// Package match provides identifier normalization, tokenization, Levenshtein
// distance, and ranked column suggestions for schema matching.
//
// Key functions:
//   - NormalizeIdent: folds a column or field name to a comparison key
//   - TokenizeIdent: splits a name into lowercase tokens
//   - Levenshtein: computes edit distance between strings
//   - Suggest: ranks source columns by similarity to a target name
package match
