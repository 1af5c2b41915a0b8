// Package cmd runs batches of shell commands with streamed output and
// cooperative cancellation.
//
// A batch is started with [Runner.Run] and runs on its own goroutine. Every
// command is passed to the platform shell (/bin/sh -c, or cmd.exe /c on
// Windows) in the given directory, one after another. Output is delivered
// line by line through a [Listener] as it is produced.
//
// # Events
//
// For each command the listener sees [EventStarted], any number of
// [EventStdout] and [EventStderr] lines, then either [EventFinished] with the
// exit code or [EventFailed] if the process could not be run. A non-zero
// exit or a failure stops the batch. [EventAllFinished] is always the last
// event and is delivered exactly once. Listener calls never overlap.
//
// # Cancellation
//
// [Execution.Cancel] stops the batch: no further command starts, and the
// running one is sent SIGTERM (its whole process group), then SIGKILL if it
// is still alive after the kill grace period. Cancelling the context passed
// to Run has the same effect.
//
// # Outcome
//
// A [Recorder] wraps a listener and classifies the finished batch as
// [OutcomeCancelled], [OutcomeFailed] or [OutcomeSuccess], in that order of
// precedence.
package cmd
