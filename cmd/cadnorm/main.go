// Package main provides the CLI entrypoint for cadnorm.
//
// cadnorm standardizes CAD/RMS incident exports:
//   - Detects known vendor export dialects
//   - Suggests field mappings best-effort for unknown layouts
//   - Lets humans review + replay mappings via YAML
//   - Normalizes, derives and validates records for a downstream tool
package main

import (
	"context"
	"os"

	"cadnorm/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
