// Package ui renders datavault output for the terminal.
//
// Semantic formatters (Path, Success, Error, ...) colorize text when the
// terminal supports it. When NO_COLOR is set or output is not a terminal,
// text decorations are used instead:
//   - Code: `backticks`
//   - Highlight: 'single quotes'
//   - Muted: (parentheses)
//
// The render functions print core reports one vault at a time.
package ui
