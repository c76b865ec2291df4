// Package ui holds the server rendered pages.
package ui

import "embed"

//go:embed templates
var Templates embed.FS
