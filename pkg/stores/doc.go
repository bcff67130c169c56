// Package stores persists validation history for lzconfig. It includes a
// SQLite store with WAL mode, embedded schema migrations, and an audit
// trail of every recorded validation and history prune.
package stores
