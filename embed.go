package exlog

import "embed"

// WebFS holds the embedded landing page served at /.
//
//go:embed web/static
var WebFS embed.FS
