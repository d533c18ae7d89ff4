// Package task tracks question generation tasks through their lifecycle.
// Submitted tasks are recorded in an in-memory Store, queued on a bounded
// TaskQueue and executed by a fixed WorkerPool, so HTTP handlers return as
// soon as a task is accepted and callers poll for the result.
package task
