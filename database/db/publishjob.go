package db

import "time"

type PublishJob struct {
	ID           string    `db:"id"`
	SourceKind   string    `db:"source_kind"`
	MediaRef     string    `db:"media_ref"`
	Title        string    `db:"title"`
	PrivacyLevel string    `db:"privacy_level"`
	PublishID    string    `db:"publish_id"`
	State        string    `db:"state"`
	Enqueued     time.Time `db:"enqueued"`
}
