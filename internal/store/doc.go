// Package store defines the persistence contracts the reminder core and the
// HTTP layer depend on. Implementations live under internal/platform.
package store
