package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryKey_IncluyeGeneracion(t *testing.T) {
	assert.Equal(t, "aromas:0:inventory", entryKey(defaultPrefix, 0, "inventory"))
	assert.Equal(t, "aromas:7:stats:2024-05-01:2024-05-31:", entryKey(defaultPrefix, 7, "stats:2024-05-01:2024-05-31:"))
	assert.NotEqual(t, entryKey(defaultPrefix, 1, "inventory"), entryKey(defaultPrefix, 2, "inventory"))
	assert.Equal(t, "aromas:gen", generationKey(defaultPrefix))
}
