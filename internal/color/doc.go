// Package color decides whether CLI output may use ANSI colors.
//
// Colors are disabled when any of these hold:
//   - NO_COLOR is set to any non-empty value
//   - TERM is "dumb"
//   - SFMCP_COLOR is "never"
//   - stdout is not a terminal (unless SFMCP_COLOR is "always")
//
// Initialize applies the decision to the go-pretty text package used by the
// table renderer.
package color
