package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/lib/pq"

	"github.com/3min-career/careerbot/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = pq.ErrorCode("23505")

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	slog.Debug("Opening Postgres database connection")
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	slog.Debug("Running Postgres migrations")
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveFlowState stores or replaces the conversation state for a user.
func (s *PostgresStore) SaveFlowState(state models.FlowState) error {
	stateDataJSON, err := marshalStateData(state.StateData)
	if err != nil {
		slog.Error("PostgresStore SaveFlowState JSON marshal failed", "error", err, "kakaoUserID", state.KakaoUserID)
		return err
	}

	query := `
		INSERT INTO conversation_states (kakao_user_id, current_step, state_data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (kakao_user_id) DO UPDATE SET
			current_step = EXCLUDED.current_step,
			state_data = EXCLUDED.state_data,
			updated_at = EXCLUDED.updated_at`
	_, err = s.db.Exec(query, state.KakaoUserID, string(state.CurrentStep), stateDataJSON, state.CreatedAt, state.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveFlowState failed", "error", err, "kakaoUserID", state.KakaoUserID)
		return fmt.Errorf("failed to save flow state for %s: %w", state.KakaoUserID, err)
	}
	slog.Debug("PostgresStore SaveFlowState succeeded", "kakaoUserID", state.KakaoUserID, "step", state.CurrentStep)
	return nil
}

// GetFlowState retrieves the conversation state for a user.
func (s *PostgresStore) GetFlowState(kakaoUserID string) (*models.FlowState, error) {
	query := `SELECT kakao_user_id, current_step, state_data, created_at, updated_at
			  FROM conversation_states WHERE kakao_user_id = $1`

	var state models.FlowState
	var stateDataJSON sql.NullString
	err := s.db.QueryRow(query, kakaoUserID).Scan(
		&state.KakaoUserID, &state.CurrentStep, &stateDataJSON, &state.CreatedAt, &state.UpdatedAt)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetFlowState not found", "kakaoUserID", kakaoUserID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetFlowState failed", "error", err, "kakaoUserID", kakaoUserID)
		return nil, err
	}

	state.StateData = unmarshalStateData(stateDataJSON.String, kakaoUserID)
	slog.Debug("PostgresStore GetFlowState found", "kakaoUserID", kakaoUserID, "step", state.CurrentStep)
	return &state, nil
}

// DeleteFlowState removes the conversation state for a user.
func (s *PostgresStore) DeleteFlowState(kakaoUserID string) error {
	_, err := s.db.Exec(`DELETE FROM conversation_states WHERE kakao_user_id = $1`, kakaoUserID)
	if err != nil {
		slog.Error("PostgresStore DeleteFlowState failed", "error", err, "kakaoUserID", kakaoUserID)
		return err
	}
	slog.Debug("PostgresStore DeleteFlowState succeeded", "kakaoUserID", kakaoUserID)
	return nil
}

// GetUser retrieves a user profile.
func (s *PostgresStore) GetUser(kakaoUserID string) (*models.User, error) {
	query := `SELECT kakao_user_id, name, job_title, total_years, job_years,
					 career_goal, project_name, recent_work, job_meaning, important_thing,
					 onboarding_completed, attendance_count, created_at, updated_at
			  FROM users WHERE kakao_user_id = $1`
	user, err := scanUser(s.db.QueryRow(query, kakaoUserID))
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetUser not found", "kakaoUserID", kakaoUserID)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetUser failed", "error", err, "kakaoUserID", kakaoUserID)
		return nil, err
	}
	return &user, nil
}

// SaveUser upserts a user profile by Kakao user id.
func (s *PostgresStore) SaveUser(user models.User) error {
	query := `
		INSERT INTO users (kakao_user_id, name, job_title, total_years, job_years,
			career_goal, project_name, recent_work, job_meaning, important_thing,
			onboarding_completed, attendance_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (kakao_user_id) DO UPDATE SET
			name = EXCLUDED.name,
			job_title = EXCLUDED.job_title,
			total_years = EXCLUDED.total_years,
			job_years = EXCLUDED.job_years,
			career_goal = EXCLUDED.career_goal,
			project_name = EXCLUDED.project_name,
			recent_work = EXCLUDED.recent_work,
			job_meaning = EXCLUDED.job_meaning,
			important_thing = EXCLUDED.important_thing,
			onboarding_completed = EXCLUDED.onboarding_completed,
			updated_at = EXCLUDED.updated_at`
	_, err := s.db.Exec(query, user.KakaoUserID,
		nilIfEmpty(user.Name), nilIfEmpty(user.JobTitle), nilIfEmpty(user.TotalYears), nilIfEmpty(user.JobYears),
		nilIfEmpty(user.CareerGoal), nilIfEmpty(user.ProjectName), nilIfEmpty(user.RecentWork),
		nilIfEmpty(user.JobMeaning), nilIfEmpty(user.ImportantThing),
		user.OnboardingCompleted, user.AttendanceCount, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveUser failed", "error", err, "kakaoUserID", user.KakaoUserID)
		return fmt.Errorf("failed to save user %s: %w", user.KakaoUserID, err)
	}
	slog.Debug("PostgresStore SaveUser succeeded", "kakaoUserID", user.KakaoUserID, "completed", user.OnboardingCompleted)
	return nil
}

// IncrementAttendance bumps the attendance counter and returns the new value.
func (s *PostgresStore) IncrementAttendance(kakaoUserID string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		UPDATE users SET attendance_count = attendance_count + 1, updated_at = NOW()
		WHERE kakao_user_id = $1
		RETURNING attendance_count`, kakaoUserID).Scan(&count)
	if err == sql.ErrNoRows {
		slog.Warn("PostgresStore IncrementAttendance user missing", "kakaoUserID", kakaoUserID)
		return 0, ErrUserNotFound
	}
	if err != nil {
		slog.Error("PostgresStore IncrementAttendance failed", "error", err, "kakaoUserID", kakaoUserID)
		return 0, err
	}
	slog.Debug("PostgresStore IncrementAttendance succeeded", "kakaoUserID", kakaoUserID, "count", count)
	return count, nil
}

// AddDailyRecord inserts a daily record row.
func (s *PostgresStore) AddDailyRecord(rec models.DailyRecord) error {
	query := `INSERT INTO daily_records (id, kakao_user_id, record_date, work_content, mood, achievement, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := s.db.Exec(query, rec.ID, rec.KakaoUserID, rec.RecordDate, rec.WorkContent,
		nilIfEmpty(rec.Mood), nilIfEmpty(rec.Achievement), rec.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
			slog.Debug("PostgresStore AddDailyRecord duplicate date", "kakaoUserID", rec.KakaoUserID, "date", rec.RecordDate)
			return ErrDuplicateRecordDate
		}
		slog.Error("PostgresStore AddDailyRecord failed", "error", err, "kakaoUserID", rec.KakaoUserID, "date", rec.RecordDate)
		return fmt.Errorf("failed to insert daily record for %s on %s: %w", rec.KakaoUserID, rec.RecordDate, err)
	}
	slog.Debug("PostgresStore AddDailyRecord succeeded", "kakaoUserID", rec.KakaoUserID, "date", rec.RecordDate)
	return nil
}

// GetDailyRecordByDate retrieves a user's record for a calendar date.
func (s *PostgresStore) GetDailyRecordByDate(kakaoUserID, date string) (*models.DailyRecord, error) {
	query := `SELECT id, kakao_user_id, record_date, work_content, mood, achievement, created_at
			  FROM daily_records WHERE kakao_user_id = $1 AND record_date = $2`
	rec, err := scanDailyRecord(s.db.QueryRow(query, kakaoUserID, date))
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore GetDailyRecordByDate not found", "kakaoUserID", kakaoUserID, "date", date)
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetDailyRecordByDate failed", "error", err, "kakaoUserID", kakaoUserID, "date", date)
		return nil, err
	}
	return &rec, nil
}

// ListDailyRecords returns the most recent records for a user, newest first.
func (s *PostgresStore) ListDailyRecords(kakaoUserID string, limit int) ([]models.DailyRecord, error) {
	query := `SELECT id, kakao_user_id, record_date, work_content, mood, achievement, created_at
			  FROM daily_records WHERE kakao_user_id = $1 ORDER BY record_date DESC LIMIT $2`
	rows, err := s.db.Query(query, kakaoUserID, limit)
	if err != nil {
		slog.Error("PostgresStore ListDailyRecords query failed", "error", err, "kakaoUserID", kakaoUserID)
		return nil, fmt.Errorf("failed to query daily records: %w", err)
	}
	defer rows.Close()

	var recs []models.DailyRecord
	for rows.Next() {
		rec, err := scanDailyRecord(rows)
		if err != nil {
			slog.Error("PostgresStore ListDailyRecords scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan daily record row: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListDailyRecords rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate daily record rows: %w", err)
	}
	slog.Debug("PostgresStore ListDailyRecords succeeded", "kakaoUserID", kakaoUserID, "count", len(recs))
	return recs, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
