// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions reposcm uses to run
// the repo tool and git in a testable manner. Command output can be captured
// and streamed into a build log at the same time.
package execshell
