package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/3min-career/careerbot/internal/models"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	slog.Debug("Opening SQLite database connection")
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	slog.Debug("Running SQLite migrations")
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveFlowState stores or replaces the conversation state for a user.
func (s *SQLiteStore) SaveFlowState(state models.FlowState) error {
	stateDataJSON, err := marshalStateData(state.StateData)
	if err != nil {
		slog.Error("SQLiteStore SaveFlowState JSON marshal failed", "error", err, "kakaoUserID", state.KakaoUserID)
		return err
	}

	query := `
		INSERT OR REPLACE INTO conversation_states (kakao_user_id, current_step, state_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query, state.KakaoUserID, string(state.CurrentStep), stateDataJSON, state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveFlowState failed", "error", err, "kakaoUserID", state.KakaoUserID)
		return fmt.Errorf("failed to save flow state for %s: %w", state.KakaoUserID, err)
	}
	slog.Debug("SQLiteStore SaveFlowState succeeded", "kakaoUserID", state.KakaoUserID, "step", state.CurrentStep)
	return nil
}

// GetFlowState retrieves the conversation state for a user.
func (s *SQLiteStore) GetFlowState(kakaoUserID string) (*models.FlowState, error) {
	query := `SELECT kakao_user_id, current_step, state_data, created_at, updated_at
			  FROM conversation_states WHERE kakao_user_id = ?`

	var state models.FlowState
	var stateDataJSON sql.NullString
	err := s.db.QueryRow(query, kakaoUserID).Scan(
		&state.KakaoUserID, &state.CurrentStep, &stateDataJSON, &state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetFlowState not found", "kakaoUserID", kakaoUserID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetFlowState failed", "error", err, "kakaoUserID", kakaoUserID)
		return nil, err
	}

	state.StateData = unmarshalStateData(stateDataJSON.String, kakaoUserID)
	slog.Debug("SQLiteStore GetFlowState found", "kakaoUserID", kakaoUserID, "step", state.CurrentStep)
	return &state, nil
}

// DeleteFlowState removes the conversation state for a user.
func (s *SQLiteStore) DeleteFlowState(kakaoUserID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE kakao_user_id = ?`, kakaoUserID)
	if err != nil {
		slog.Error("SQLiteStore DeleteFlowState failed", "error", err, "kakaoUserID", kakaoUserID)
		return err
	}
	slog.Debug("SQLiteStore DeleteFlowState succeeded", "kakaoUserID", kakaoUserID)
	return nil
}

// GetUser retrieves a user profile.
func (s *SQLiteStore) GetUser(kakaoUserID string) (*models.User, error) {
	query := `SELECT kakao_user_id, name, job_title, total_years, job_years,
					 career_goal, project_name, recent_work, job_meaning, important_thing,
					 onboarding_completed, attendance_count, created_at, updated_at
			  FROM users WHERE kakao_user_id = ?`
	user, err := scanUser(s.db.QueryRow(query, kakaoUserID))
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetUser not found", "kakaoUserID", kakaoUserID)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetUser failed", "error", err, "kakaoUserID", kakaoUserID)
		return nil, err
	}
	return &user, nil
}

// SaveUser upserts a user profile by Kakao user id.
func (s *SQLiteStore) SaveUser(user models.User) error {
	query := `
		INSERT INTO users (kakao_user_id, name, job_title, total_years, job_years,
			career_goal, project_name, recent_work, job_meaning, important_thing,
			onboarding_completed, attendance_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kakao_user_id) DO UPDATE SET
			name = excluded.name,
			job_title = excluded.job_title,
			total_years = excluded.total_years,
			job_years = excluded.job_years,
			career_goal = excluded.career_goal,
			project_name = excluded.project_name,
			recent_work = excluded.recent_work,
			job_meaning = excluded.job_meaning,
			important_thing = excluded.important_thing,
			onboarding_completed = excluded.onboarding_completed,
			updated_at = excluded.updated_at`
	_, err := s.db.Exec(query, user.KakaoUserID,
		nilIfEmpty(user.Name), nilIfEmpty(user.JobTitle), nilIfEmpty(user.TotalYears), nilIfEmpty(user.JobYears),
		nilIfEmpty(user.CareerGoal), nilIfEmpty(user.ProjectName), nilIfEmpty(user.RecentWork),
		nilIfEmpty(user.JobMeaning), nilIfEmpty(user.ImportantThing),
		user.OnboardingCompleted, user.AttendanceCount, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveUser failed", "error", err, "kakaoUserID", user.KakaoUserID)
		return fmt.Errorf("failed to save user %s: %w", user.KakaoUserID, err)
	}
	slog.Debug("SQLiteStore SaveUser succeeded", "kakaoUserID", user.KakaoUserID, "completed", user.OnboardingCompleted)
	return nil
}

// IncrementAttendance bumps the attendance counter and returns the new value.
func (s *SQLiteStore) IncrementAttendance(kakaoUserID string) (int, error) {
	res, err := s.db.Exec(`UPDATE users SET attendance_count = attendance_count + 1, updated_at = CURRENT_TIMESTAMP WHERE kakao_user_id = ?`, kakaoUserID)
	if err != nil {
		slog.Error("SQLiteStore IncrementAttendance failed", "error", err, "kakaoUserID", kakaoUserID)
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		slog.Warn("SQLiteStore IncrementAttendance user missing", "kakaoUserID", kakaoUserID)
		return 0, ErrUserNotFound
	}
	var count int
	if err := s.db.QueryRow(`SELECT attendance_count FROM users WHERE kakao_user_id = ?`, kakaoUserID).Scan(&count); err != nil {
		slog.Error("SQLiteStore IncrementAttendance count read failed", "error", err, "kakaoUserID", kakaoUserID)
		return 0, err
	}
	slog.Debug("SQLiteStore IncrementAttendance succeeded", "kakaoUserID", kakaoUserID, "count", count)
	return count, nil
}

// AddDailyRecord inserts a daily record row.
func (s *SQLiteStore) AddDailyRecord(rec models.DailyRecord) error {
	query := `INSERT INTO daily_records (id, kakao_user_id, record_date, work_content, mood, achievement, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, rec.ID, rec.KakaoUserID, rec.RecordDate, rec.WorkContent,
		nilIfEmpty(rec.Mood), nilIfEmpty(rec.Achievement), rec.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			slog.Debug("SQLiteStore AddDailyRecord duplicate date", "kakaoUserID", rec.KakaoUserID, "date", rec.RecordDate)
			return ErrDuplicateRecordDate
		}
		slog.Error("SQLiteStore AddDailyRecord failed", "error", err, "kakaoUserID", rec.KakaoUserID, "date", rec.RecordDate)
		return fmt.Errorf("failed to insert daily record for %s on %s: %w", rec.KakaoUserID, rec.RecordDate, err)
	}
	slog.Debug("SQLiteStore AddDailyRecord succeeded", "kakaoUserID", rec.KakaoUserID, "date", rec.RecordDate)
	return nil
}

// GetDailyRecordByDate retrieves a user's record for a calendar date.
func (s *SQLiteStore) GetDailyRecordByDate(kakaoUserID, date string) (*models.DailyRecord, error) {
	query := `SELECT id, kakao_user_id, record_date, work_content, mood, achievement, created_at
			  FROM daily_records WHERE kakao_user_id = ? AND record_date = ?`
	rec, err := scanDailyRecord(s.db.QueryRow(query, kakaoUserID, date))
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore GetDailyRecordByDate not found", "kakaoUserID", kakaoUserID, "date", date)
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetDailyRecordByDate failed", "error", err, "kakaoUserID", kakaoUserID, "date", date)
		return nil, err
	}
	return &rec, nil
}

// ListDailyRecords returns the most recent records for a user, newest first.
func (s *SQLiteStore) ListDailyRecords(kakaoUserID string, limit int) ([]models.DailyRecord, error) {
	query := `SELECT id, kakao_user_id, record_date, work_content, mood, achievement, created_at
			  FROM daily_records WHERE kakao_user_id = ? ORDER BY record_date DESC LIMIT ?`
	rows, err := s.db.Query(query, kakaoUserID, limit)
	if err != nil {
		slog.Error("SQLiteStore ListDailyRecords query failed", "error", err, "kakaoUserID", kakaoUserID)
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	defer rows.Close()

	var recs []models.DailyRecord
	for rows.Next() {
		rec, err := scanDailyRecord(rows)
		if err != nil {
			slog.Error("SQLiteStore ListDailyRecords scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan daily record row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListDailyRecords rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate daily record rows: %w", err)
	}
	slog.Debug("SQLiteStore ListDailyRecords succeeded", "kakaoUserID", kakaoUserID, "count", len(recs))
	return recs, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}

// marshalStateData serializes the accumulator map, empty maps as NULL.
func marshalStateData(data map[models.DataKey]string) (interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

// unmarshalStateData deserializes the accumulator map; corruption degrades to
// an empty map rather than failing the read.
func unmarshalStateData(raw, kakaoUserID string) map[models.DataKey]string {
	if raw == "" {
		return nil
	}
	data := make(map[models.DataKey]string)
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		slog.Error("Store state_data JSON unmarshal failed", "error", err, "kakaoUserID", kakaoUserID)
		return make(map[models.DataKey]string)
	}
	return data
}
