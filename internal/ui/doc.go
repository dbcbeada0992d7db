// Package ui renders mytop's terminal output: the dashboard screen drawn on
// every refresh and the connection progress printed before it starts.
//
// # Components Overview
//
//	Screen            - Alternate-screen renderer for monitor.Frame values
//	RenderHeader      - Source, task counts, sort order and system meters
//	RenderProcessTable- Fixed-width process table, sorted and truncated
//	RenderHelp        - Key and command reference overlay
//	ConnectionDisplay - Spinner and per-host result lines during startup
//
// # Color Scheme
//
// Colors are ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Connected hosts, low usage
//	ColorError     (red)    - Failures, usage at or above 80%
//	ColorWarning   (yellow) - Status line, usage at or above 60%
//	ColorInfo      (cyan)   - Titles and labels
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - Table header background
//
// The screen is written while the terminal is in raw mode, so every line
// break is emitted as CRLF.
package ui
