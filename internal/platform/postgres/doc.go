// Package postgres provides PostgreSQL-backed implementations of the
// interfaces defined in internal/store. Ownership-scoped mutations are
// expressed as single statements combining the filter and the change,
// so concurrent requests never race between an existence check and the
// write itself.
package postgres
