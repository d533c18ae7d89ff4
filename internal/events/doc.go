// Package events publishes task lifecycle transitions to interested handlers.
//
// The task manager emits a TaskEvent whenever a task is created or changes
// status. Handlers such as the telemetry recorder subscribe through an
// EventEmitter without the task package knowing about them. A failing
// handler never affects the task that produced the event.
package events
