/*
Package domain contains the value types shared by the derivation engine and
its adapters.

It is kept free of I/O so that stores, HTTP handlers and the CLI can exchange
derivations without depending on each other.

# Key Entities

  - Step: a history entry (resulting statement + label).
  - Snapshot: the serializable state of a Task (context, rules, history,
    current/target statements, diagnostic log).
  - SnapshotDiff: what changed between two snapshots, for partial updates.
  - LifecycleHooks: callbacks fired on every committed or rejected step.
*/
package domain
