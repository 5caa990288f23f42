package options

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNewLifter(t *testing.T) {
	opts := NewLifter("PIC18-Extended")

	assert.Equal(t, "pic18-extended", opts.Mode)
	assert.True(t, opts.ContinueOnError)
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.HexBytes)
	assert.True(t, opts.Statements)
	assert.Equal(t, 0, len(opts.Ranges))
}
