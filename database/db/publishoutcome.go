package db

import "time"

type OutcomeType string

const (
	OutcomeTypeComplete OutcomeType = "COMPLETE"
	OutcomeTypeFailed   OutcomeType = "FAILED"
)

type PublishOutcome struct {
	ID           string      `db:"id"`
	JobID        string      `db:"job_id"`
	PublishID    string      `db:"publish_id"`
	Type         OutcomeType `db:"type"`
	ErrorCode    string      `db:"error_code"`
	ErrorMessage string      `db:"error_message"`
	PostID       string      `db:"post_id"`
	Recorded     time.Time   `db:"recorded"`
}
