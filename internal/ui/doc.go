// Package ui renders external command activity into the build log so that a
// reader of the log sees each repo and git invocation next to its output.
package ui
