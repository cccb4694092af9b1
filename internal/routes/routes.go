// Package routes defines HTTP route constants for the application.
package routes

const (
	// Static and theming
	RobotsPath        = "/robots.txt"
	ThemeOppositeIcon = "/theme/opposite-icon"
	ThemeToggle       = "/theme/toggle"
	SyntaxThemeSet    = "/syntax-theme/set"
	SyntaxThemeGet    = "/syntax-theme/{theme}"

	// Content
	PluginsPath = "/plugins"

	// SSE
	SSEPath = "/sse"

	// Root
	RootPath = "/"
)
