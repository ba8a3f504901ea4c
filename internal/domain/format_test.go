package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidFormat(t *testing.T) {
	assert.True(t, ValidFormat(FormatTable))
	assert.True(t, ValidFormat(FormatCSV))
	assert.True(t, ValidFormat(FormatJSON))
	assert.False(t, ValidFormat("yaml"))
	assert.False(t, ValidFormat("CSV"))
}
