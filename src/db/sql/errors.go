package db

import "ledgerly-server/src/db"

// Re-exported so handlers only need this package.
var (
	ErrNotFound = db.ErrNotFound
	ErrConflict = db.ErrConflict
)

func mustAffect(rows int64) error {
	if rows == 0 {
		return db.ErrNotFound
	}
	return nil
}
