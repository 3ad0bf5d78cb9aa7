package models

import "time"

// ImportSession is the persisted history entry for one bulk import.
// Status lifecycle: uploaded -> previewed -> committed | failed.
type ImportSession struct {
	ID            int       `db:"id" json:"id"`
	SessionCode   string    `db:"session_code" json:"session_code"`
	UserID        int       `db:"user_id" json:"user_id"`
	Kind          string    `db:"kind" json:"kind"`
	Filename      string    `db:"filename" json:"filename"`
	TotalRows     int       `db:"total_rows" json:"total_rows"`
	ValidRows     int       `db:"valid_rows" json:"valid_rows"`
	DuplicateRows int       `db:"duplicate_rows" json:"duplicate_rows"`
	ImportedRows  int       `db:"imported_rows" json:"imported_rows"`
	FailedRows    int       `db:"failed_rows" json:"failed_rows"`
	Status        string    `db:"status" json:"status"`
	ErrorMessage  string    `db:"error_message" json:"error_message"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
