package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionDataRoundTrip(t *testing.T) {
	data := ActionData(ActionClose, "8f14e45f")
	assert.Equal(t, "closeREQUEST8f14e45f", data)

	action, requestID, ok := ParseActionData(data)
	assert.True(t, ok)
	assert.Equal(t, ActionClose, action)
	assert.Equal(t, "8f14e45f", requestID)
}

func TestParseActionDataRejectsMalformed(t *testing.T) {
	for _, data := range []string{"", "close", "REQUESTabc", "closeREQUEST"} {
		_, _, ok := ParseActionData(data)
		assert.False(t, ok, "data %q", data)
	}
}
