/*
Package ports defines the driven ports of equaio.

  - SnapshotStore: persists derivation snapshots per session.
  - DistributedLocker: serializes access to a session across replicas.
  - RuleSetLoader: provides rule set documents by name.

Package ports/tests holds contract suites that every adapter runs.
*/
package ports
