// Package postgres implements the store interfaces using a PostgreSQL
// database accessed through database/sql with the pgx driver. Tag and
// dependency lists are stored as JSONB columns; everything else maps to
// plain columns. Connection pooling and lifecycle are owned by the caller.
package postgres
