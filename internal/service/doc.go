// Package service contains the application use cases behind the HTTP API.
//
// Services coordinate stores (defined in internal/store) and the reminder
// selection logic, apply transactional boundaries, and wrap failures in
// ServiceError so the API layer can map them to status codes with
// errors.Is and errors.As. They depend on store interfaces only, never on a
// concrete database.
package service
