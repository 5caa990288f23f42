package detector

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrolift/internal/options"
)

func TestDetect(t *testing.T) {
	logger := log.NewTestLogger(t)
	d := New(logger)

	tests := []struct {
		name      string
		modeOpt   string
		inputFile string
		wantMode  string
	}{
		{
			name:      "explicit mode option",
			modeOpt:   "pic16-enhanced",
			inputFile: "firmware.hex",
			wantMode:  "pic16-enhanced",
		},
		{
			name:      "explicit mode option is case insensitive",
			modeOpt:   "PIC18-Extended",
			inputFile: "firmware.bin",
			wantMode:  "pic18-extended",
		},
		{
			name:      "hex defaults to pic18",
			inputFile: "firmware.hex",
			wantMode:  "pic18",
		},
		{
			name:      "detect from .p16 extension",
			inputFile: "firmware.p16",
			wantMode:  "pic16-enhanced",
		},
		{
			name:      "detect from .p18 extension",
			inputFile: "firmware.P18",
			wantMode:  "pic18",
		},
		{
			name:      "unknown extension defaults to pic18",
			inputFile: "firmware.rom",
			wantMode:  "pic18",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{
				Parameters: options.Parameters{Input: tt.inputFile},
				Flags:      options.Flags{Mode: tt.modeOpt},
			}
			assert.Equal(t, tt.wantMode, d.Detect(opts))
		})
	}
}

func TestDetectFormat(t *testing.T) {
	d := New(log.NewTestLogger(t))

	tests := []struct {
		name      string
		binary    bool
		inputFile string
		want      Format
	}{
		{name: "hex extension", inputFile: "a.hex", want: IntelHex},
		{name: "ihx extension", inputFile: "a.IHX", want: IntelHex},
		{name: "binary option overrides extension", binary: true, inputFile: "a.hex", want: RawBinary},
		{name: "raw image", inputFile: "a.bin", want: RawBinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options.Program{
				Parameters: options.Parameters{Input: tt.inputFile},
				Flags:      options.Flags{Binary: tt.binary},
			}
			format := d.DetectFormat(opts)
			assert.Equal(t, tt.want, format)
			assert.NotEmpty(t, format.String())
		})
	}
}
