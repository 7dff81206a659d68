// Package api handles incoming HTTP requests for the task queries the
// reminder service exposes: the caller's pending list, the list for a given
// day, and ticking a task done for today. It translates HTTP concerns into
// service calls and maps service errors back to status codes.
package api
