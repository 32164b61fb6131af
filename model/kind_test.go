package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSourceKind(t *testing.T) {
	kind, err := ParseSourceKind("file")
	assert.NoError(t, err)
	assert.Equal(t, SourceKindFile, kind)

	kind, err = ParseSourceKind("PHOTO")
	assert.NoError(t, err)
	assert.Equal(t, SourceKindPhoto, kind)

	_, err = ParseSourceKind("carrier_pigeon")
	assert.Error(t, err)
}

func TestParseJobState(t *testing.T) {
	state, err := ParseJobState("queued")
	assert.NoError(t, err)
	assert.Equal(t, JobStateQueued, state)

	state, err = ParseJobState("SUBMITTED")
	assert.NoError(t, err)
	assert.Equal(t, JobStateSubmitted, state)

	_, err = ParseJobState("LIMBO")
	assert.Error(t, err)
}
