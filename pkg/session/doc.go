/*
Package session implements session management and persistence orchestration.

A session is a stored derivation. The Manager restores it into a task.Task,
runs an operation and saves it back, holding a per-session lock so that
concurrent requests (HTTP, MCP) apply their operations one at a time.
Distributed locking extends the guarantee across replicas that share a store.
*/
package session
