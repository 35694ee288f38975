// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
)

// Files contains the frontend files (frontend/dist) served directly via HTTP.
// The dashboard build output is copied into pkg/embedded/ during CI.
//
//go:embed frontend/dist
var Files embed.FS
