package database

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"github.com/cliprelay/publishbot/database/db"
	"github.com/cliprelay/publishbot/model"
)

type Database struct {
	connString string
	pool       *pgxpool.Pool
}

func NewDatabase(connString string) *Database {
	return &Database{
		connString: connString,
	}
}

func (d *Database) Connect(ctx context.Context) error {
	var err error
	d.pool, err = pgxpool.New(ctx, d.connString)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) Disconnect() {
	d.pool.Close()
}

func (d *Database) AddJob(ctx context.Context, kind model.SourceKind, mediaRef string, title string, privacyLevel string) (string, error) {
	id := cuid.New()
	_, err := d.pool.Exec(ctx, `
	INSERT INTO publish_job (id, source_kind, media_ref, title, privacy_level, publish_id, state, enqueued) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id,
		kind,
		mediaRef,
		title,
		privacyLevel,
		"",
		model.JobStateQueued,
		time.Now().UTC(), // the DB stores timezones and assumes UTC
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (d *Database) DeleteJob(ctx context.Context, jobID string) error {
	// don't really care about the result, as long as this succeeds
	_, err := d.pool.Exec(ctx, `
	DELETE FROM publish_job WHERE id = $1`,
		jobID,
	)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) GetJobsInState(ctx context.Context, state model.JobState) ([]model.Job, error) {
	var jobs []model.Job
	var raws []db.PublishJob
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		source_kind,
		media_ref,
		title,
		privacy_level,
		publish_id,
		state,
		enqueued
	FROM publish_job
	WHERE state = $1
	ORDER BY enqueued ASC`,
		state,
	)
	if err != nil {
		return nil, err
	}

	raws, err = pgx.CollectRows(rows, pgx.RowToStructByName[db.PublishJob])
	if err != nil {
		return nil, err
	}

	for _, raw := range raws {
		job, err := model.JobFromPublishJob(raw)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}

	return jobs, nil
}

// MarkSubmitted records the publish ID TikTok assigned and moves the job
// into the polling pool.
func (d *Database) MarkSubmitted(ctx context.Context, jobID string, publishID string) error {
	_, err := d.pool.Exec(ctx, `
	UPDATE publish_job SET publish_id = $1, state = $2 WHERE id = $3`,
		publishID,
		model.JobStateSubmitted,
		jobID,
	)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) MarkTerminal(ctx context.Context, jobID string, state model.JobState) error {
	_, err := d.pool.Exec(ctx, `
	UPDATE publish_job SET state = $1 WHERE id = $2`,
		state,
		jobID,
	)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) RecordOutcome(ctx context.Context, jobID string, publishID string, outcomeType db.OutcomeType, errorCode string, errorMessage string, postID string) error {
	_, err := d.pool.Exec(
		ctx,
		`INSERT INTO publish_outcome (id, job_id, publish_id, type, error_code, error_message, post_id, recorded) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cuid.New(),
		jobID,
		publishID,
		outcomeType,
		errorCode,
		errorMessage,
		postID,
		time.Now().UTC(), // the DB stores timezones and assumes UTC
	)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) FindOutcomesForJob(ctx context.Context, jobID string) ([]db.PublishOutcome, error) {
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		job_id,
		publish_id,
		type,
		error_code,
		error_message,
		post_id,
		recorded
	FROM publish_outcome
	WHERE job_id = $1`,
		jobID,
	)
	if err != nil {
		return nil, err
	}

	outcomes, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.PublishOutcome])
	if err != nil {
		return nil, err
	}

	return outcomes, nil
}
