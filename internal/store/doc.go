// Package store persists the single credential pair and the request counter.
//
// The [Store] interface exposes atomic get/set/increment of individual string keys and nothing more:
// no transactions span keys, so concurrent writers resolve as last-write-wins. Every read goes to the
// backend; nothing is cached in process, which keeps the backend the single source of truth when several
// replicas share it.
//
// Backends:
//   - [RedisStore] : shared Redis instance (the default deployment)
//   - [SQLiteStore] : local SQLite file with embedded migrations, for single-host deployments
//
// The three keys in use are [KeyAccessToken], [KeyRefreshToken] and [KeyRequestCount].
package store
