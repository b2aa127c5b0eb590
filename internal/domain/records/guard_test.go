package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorize(t *testing.T) {
	rec := &Record{ID: "r1", OwnerID: "u1"}

	require.NoError(t, Authorize(rec, "u1"))

	err := Authorize(rec, "u2")
	assert.ErrorIs(t, err, ErrNotOwner)

	err = Authorize(nil, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
}
