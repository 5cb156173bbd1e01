// Package web holds the dashboard templates compiled into the binary.
package web

import "embed"

//go:embed templates/*.html
var Templates embed.FS
