// Package journal provides durable storage for the engine's action stream.
//
// Every action the bus processes is appended with its logical seq, its
// canonical JSON payload, and a content hash of that payload. The journal
// serves two purposes: post-mortem tracing of a session, and deterministic
// replay - re-applying the journaled stream to an empty store reproduces
// the exact state the session reached, because reducers are pure functions
// of (state, action) and seq fixes the order.
//
// Uses SQLite with WAL mode for concurrent read access while a session is
// still writing.
package journal
