// Package domain contains the core business entities of the reminder service:
// users, their tasks and the calendar arithmetic that decides which tasks are
// pending on a given day. Everything here is free of I/O so the selection rules
// can be exercised without a database or a mail server.
package domain
