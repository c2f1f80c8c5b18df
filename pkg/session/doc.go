/*
Package session runs conversations against a store.

A Manager loads a conversation snapshot, applies one turn through the engine
and saves the result, all while holding a per-conversation lock. Locks are
reference counted local mutexes, optionally backed by a distributed lock so
several replicas can serve the same conversation one turn at a time.
*/
package session
