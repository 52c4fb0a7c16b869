/*
Permafrost internal architecture:

 One invocation, one run. The CLI loads the two config files, opens the
 machine state store, and dispatches to a subsystem:

  run     ──► scanner ──► mariadb dumps ──► restic backup ──► prune
  verify  ──► restic check [--read-data]
  cold    ──► scanner ──► cold.Coordinator ──► transfer (rsync) ──► ledger

 Every run records a RunRecord in the state store and finishes with an
 Uptime Kuma push when an endpoint is configured. Remote transports are
 external tools (restic, rsync, ssh); permafrost owns the bookkeeping:
 which paths are backed up, which cold files are safely mirrored and with
 what checksum, and whether the local copies still match.
*/
package permafrost

import "path/filepath"

const (
	// DefaultConfigDir holds config.toml and machine.toml.
	DefaultConfigDir = "/etc/permafrost"

	// DefaultStateDir holds the sqlite state database and the secrets store.
	DefaultStateDir = "/var/lib/permafrost"

	// StateDBName is the sqlite database file inside the state dir.
	StateDBName = "permafrost.db"
)

// StateDBPath returns the sqlite database path under stateDir.
func StateDBPath(stateDir string) string {
	return filepath.Join(stateDir, StateDBName)
}
