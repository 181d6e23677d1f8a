package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalDistinguishesAbsentNullAndValue(t *testing.T) {
	type patch struct {
		Status      Optional[string] `json:"status"`
		Description Optional[string] `json:"description"`
		AssignedTo  Optional[string] `json:"assigned_to"`
	}

	var p patch
	require.NoError(t, json.Unmarshal([]byte(`{"status":"Done","description":null}`), &p))

	assert.True(t, p.Status.Set)
	assert.True(t, p.Status.Valid)
	assert.Equal(t, "Done", p.Status.Value)

	assert.True(t, p.Description.Set)
	assert.False(t, p.Description.Valid)

	assert.False(t, p.AssignedTo.Set)
}

func TestOptionalPtr(t *testing.T) {
	var absent Optional[string]
	assert.Nil(t, absent.Ptr())

	null := Optional[string]{Set: true}
	assert.Nil(t, null.Ptr())

	value := Optional[string]{Set: true, Valid: true, Value: "bob"}
	ptr := value.Ptr()
	require.NotNil(t, ptr)
	assert.Equal(t, "bob", *ptr)

	// Ptr hands out a copy, not a view into the wrapper.
	*ptr = "changed"
	assert.Equal(t, "bob", value.Value)
}
