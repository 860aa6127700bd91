// Package backup provides snapshot backups of the LevelUp database.
package backup

import "errors"

// ErrBackupNotFound indicates the requested backup does not exist.
var ErrBackupNotFound = errors.New("backup not found")
