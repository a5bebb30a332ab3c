package store

import (
	"database/sql"

	"github.com/3min-career/careerbot/internal/models"
)

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanUser scans a full user row in column order.
func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	var name, jobTitle, totalYears, jobYears, careerGoal, projectName, recentWork, jobMeaning, importantThing sql.NullString
	err := row.Scan(
		&u.KakaoUserID, &name, &jobTitle, &totalYears, &jobYears,
		&careerGoal, &projectName, &recentWork, &jobMeaning, &importantThing,
		&u.OnboardingCompleted, &u.AttendanceCount, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return u, err
	}
	u.Name = name.String
	u.JobTitle = jobTitle.String
	u.TotalYears = totalYears.String
	u.JobYears = jobYears.String
	u.CareerGoal = careerGoal.String
	u.ProjectName = projectName.String
	u.RecentWork = recentWork.String
	u.JobMeaning = jobMeaning.String
	u.ImportantThing = importantThing.String
	return u, nil
}

// scanDailyRecord scans a full daily record row in column order.
func scanDailyRecord(row rowScanner) (models.DailyRecord, error) {
	var r models.DailyRecord
	var mood, achievement sql.NullString
	err := row.Scan(&r.ID, &r.KakaoUserID, &r.RecordDate, &r.WorkContent, &mood, &achievement, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	r.Mood = mood.String
	r.Achievement = achievement.String
	return r, nil
}
