package repository

import (
	"github.com/jmoiron/sqlx"

	"wellwatch/internal/models"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(session *models.ImportSession) error {
	query := `INSERT INTO import_sessions (session_code, user_id, kind, filename,
	          total_rows, valid_rows, duplicate_rows, status)
	          VALUES (:session_code, :user_id, :kind, :filename,
	          :total_rows, :valid_rows, :duplicate_rows, :status)`
	result, err := r.db.NamedExec(query, session)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	session.ID = int(id)
	return nil
}

func (r *SessionRepository) FindByID(id int) (*models.ImportSession, error) {
	var session models.ImportSession
	query := "SELECT * FROM import_sessions WHERE id = ? LIMIT 1"
	err := r.db.Get(&session, query, id)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) FindByCode(code string) (*models.ImportSession, error) {
	var session models.ImportSession
	query := "SELECT * FROM import_sessions WHERE session_code = ? LIMIT 1"
	err := r.db.Get(&session, query, code)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) List(userID, limit, offset int) ([]models.ImportSession, int, error) {
	var sessions []models.ImportSession
	var total int

	countQuery := "SELECT COUNT(*) FROM import_sessions WHERE user_id = ?"
	if err := r.db.Get(&total, countQuery, userID); err != nil {
		return nil, 0, err
	}

	query := `SELECT * FROM import_sessions WHERE user_id = ?
	          ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := r.db.Select(&sessions, query, userID, limit, offset); err != nil {
		return nil, 0, err
	}

	return sessions, total, nil
}

func (r *SessionRepository) UpdateStatus(id int, status string) error {
	query := "UPDATE import_sessions SET status = ? WHERE id = ?"
	_, err := r.db.Exec(query, status, id)
	return err
}

// UpdateResult records the commit outcome for a session.
func (r *SessionRepository) UpdateResult(id int, status string, imported, failed int, errorMessage string) error {
	query := `UPDATE import_sessions SET status = ?, imported_rows = ?,
	          failed_rows = ?, error_message = ? WHERE id = ?`
	_, err := r.db.Exec(query, status, imported, failed, errorMessage, id)
	return err
}
