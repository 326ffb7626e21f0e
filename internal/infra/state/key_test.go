package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisStateStore_Key(t *testing.T) {
	assert.Equal(t, "oddswatch:alert_state:abc", NewRedisStateStore(nil, "", 0).key("abc"))
	assert.Equal(t, "custom:abc", NewRedisStateStore(nil, "custom", 0).key("abc"))
}
