package loader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrolift/internal/detector"
	"github.com/retroenv/retrolift/internal/ir"
	"github.com/retroenv/retrolift/internal/options"
)

//nolint:funlen // test functions can be long
func TestParseHex(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    uint32
		base     ir.Address
		expected []byte
		err      error
	}{
		{
			name:     "gap is filled with erased value",
			input:    ":04000000120E0000DC\n:020008001200E4\n:00000001FF\n",
			base:     0,
			expected: []byte{0x12, 0x0E, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0x12, 0x00},
		},
		{
			name:     "data above limit is ignored",
			input:    ":04000000120E0000DC\n:020000040030CA\n:02000000FFFF00\n:00000001FF\n",
			limit:    options.DefaultProgramLimit,
			expected: []byte{0x12, 0x0E, 0x00, 0x00},
		},
		{
			name:     "extended segment address",
			input:    ":020000021000EC\r\n:02000400AABB95\r\n:00000001FF\r\n",
			base:     0x10004,
			expected: []byte{0xAA, 0xBB},
		},
		{
			name:     "extended linear address reset",
			input:    ":020000021000EC\n:020000040000FA\n:02000400AABB95\n:00000001FF\n",
			base:     4,
			expected: []byte{0xAA, 0xBB},
		},
		{
			name:     "start address record",
			input:    ":0400000500000000F7\n:04000000120E0000DC\n",
			expected: []byte{0x12, 0x0E, 0x00, 0x00},
		},
		{
			name:     "limit truncates record",
			input:    ":04000000120E0000DC\n",
			limit:    2,
			expected: []byte{0x12, 0x0E},
		},
		{
			name:  "records after end of file are ignored",
			input: ":00000001FF\n:04000000120E0000DC\n",
			err:   ErrNoData,
		},
		{
			name:  "checksum mismatch",
			input: ":04000000120E0000DD\n",
			err:   ErrChecksum,
		},
		{
			name:  "missing start code",
			input: "04000000120E0000DC\n",
			err:   ErrInvalidRecord,
		},
		{
			name:  "length mismatch",
			input: ":0400000012\n",
			err:   ErrInvalidRecord,
		},
		{
			name:  "not hexadecimal",
			input: ":0400000012QQ0000DC\n",
			err:   ErrInvalidRecord,
		},
		{
			name:  "unsupported record type",
			input: ":00000006FA\n",
			err:   ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem, err := ParseHex(strings.NewReader(tt.input), tt.limit)
			if tt.err != nil {
				assert.True(t, errors.Is(err, tt.err), err)
				assert.Nil(t, mem)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.base, mem.Base)
			assert.Equal(t, tt.expected, mem.Data)
		})
	}
}

func TestParseHexErrorLine(t *testing.T) {
	_, err := ParseHex(strings.NewReader(":04000000120E0000DC\n\n:04000000120E0000DD\n"), 0)
	assert.ErrorContains(t, err, "line 3")
}

//nolint:funlen // test functions can be long
func TestLoad(t *testing.T) {
	t.Run("load binary file", func(t *testing.T) {
		tmpFile := createTempFile(t, "firmware.bin", []byte{0x12, 0x0E, 0x00, 0x00})

		loader := New()
		opts := options.Program{
			Parameters: options.Parameters{Input: tmpFile},
			Flags:      options.Flags{Base: 0x100},
		}

		mem, err := loader.Load(opts, detector.RawBinary)
		assert.NoError(t, err)
		assert.Equal(t, ir.Address(0x100), mem.Base)
		assert.Equal(t, 4, len(mem.Data))
	})

	t.Run("load intel hex file with default limit", func(t *testing.T) {
		content := ":04000000120E0000DC\n:020000040030CA\n:02000000FFFF00\n:00000001FF\n"
		tmpFile := createTempFile(t, "firmware.hex", []byte(content))

		mem, err := New().Load(options.Program{Parameters: options.Parameters{Input: tmpFile}}, detector.IntelHex)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x12, 0x0E, 0x00, 0x00}, mem.Data)
	})

	t.Run("error on non-existent file", func(t *testing.T) {
		opts := options.Program{
			Parameters: options.Parameters{Input: "/nonexistent/file.hex"},
		}

		_, err := New().Load(opts, detector.IntelHex)
		assert.Error(t, err)
	})

	t.Run("error on empty binary", func(t *testing.T) {
		_, err := New().LoadFromBytes(nil, options.Program{}, detector.RawBinary)
		assert.True(t, errors.Is(err, ErrNoData))
	})

	t.Run("error wraps file name", func(t *testing.T) {
		tmpFile := createTempFile(t, "broken.hex", []byte("garbage\n"))

		_, err := New().Load(options.Program{Parameters: options.Parameters{Input: tmpFile}}, detector.IntelHex)
		assert.True(t, errors.Is(err, ErrInvalidRecord))
		assert.ErrorContains(t, err, "broken.hex")
	})
}

func createTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}
