// Package postgres implements the internal/store contracts on PostgreSQL
// through the pgx database/sql driver. The schema is owned by the embedded
// goose migrations in migrations/.
package postgres
