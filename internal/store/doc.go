// Package store provides the flat key-value persistence layer backing the
// bot's per-guild routing configuration, with SQLite and in-memory
// implementations.
package store
