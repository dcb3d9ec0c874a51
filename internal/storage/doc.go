// Package storage implements the key-value persistence areas used by the session and the watchlist.
//
// Two areas exist, mirroring a browser's storage model:
//   - the short-lived area ([ScopeSession]) holds the local session token and is cleared on logout
//   - the long-lived area ([ScopeLocal]) holds the identity and the watchlist and survives restarts
//
// Implementations:
//   - [MemoryStore] : map-backed area that lives only as long as the process
//   - [SQLiteStore] : one scope of the storage table in a SQLite database
//
// Callers depend on the [Store] interface so they can be exercised against memory in tests.
package storage
