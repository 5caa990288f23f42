package loader

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrolift/internal/image"
	"github.com/retroenv/retrolift/internal/ir"
)

// Intel HEX errors.
var (
	ErrInvalidRecord = errors.New("invalid intel hex record")
	ErrChecksum      = errors.New("intel hex checksum mismatch")
	ErrNoData        = errors.New("image contains no data")
)

// Intel HEX record types.
const (
	recordData             = 0x00
	recordEOF              = 0x01
	recordExtendedSegment  = 0x02
	recordStartSegment     = 0x03
	recordExtendedLinear   = 0x04
	recordStartLinear      = 0x05
	recordHeaderSize       = 5 // byte count, address, type and checksum
	erasedValue       byte = 0xFF
)

type record struct {
	kind    byte
	address uint16
	data    []byte
}

type segment struct {
	address uint32
	data    []byte
}

// ParseHex reads an Intel HEX file into a contiguous memory image.
// Gaps between records are filled with the erased flash value 0xFF.
// Data at or above limit is ignored, a limit of 0 keeps all data.
func ParseHex(r io.Reader, limit uint32) (*image.Memory, error) {
	scanner := bufio.NewScanner(r)
	var segments []segment
	var upper uint32
	line := 0

scan:
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		rec, err := parseRecord(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		switch rec.kind {
		case recordData:
			address := upper + uint32(rec.address)
			if limit != 0 && address >= limit {
				continue
			}
			segments = append(segments, segment{address: address, data: rec.data})

		case recordEOF:
			break scan

		case recordExtendedSegment, recordExtendedLinear:
			if len(rec.data) != 2 {
				return nil, fmt.Errorf("line %d: %w: extended address record with %d bytes", line, ErrInvalidRecord, len(rec.data))
			}
			upper = uint32(binary.BigEndian.Uint16(rec.data))
			if rec.kind == recordExtendedSegment {
				upper <<= 4
			} else {
				upper <<= 16
			}

		case recordStartSegment, recordStartLinear:
			// the reset vector defines the entry point on PIC devices

		default:
			return nil, fmt.Errorf("line %d: %w: unsupported record type %02X", line, ErrInvalidRecord, rec.kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading intel hex: %w", err)
	}

	return assemble(segments, limit)
}

func parseRecord(text string) (record, error) {
	if text[0] != ':' {
		return record{}, fmt.Errorf("%w: missing start code", ErrInvalidRecord)
	}
	b, err := hex.DecodeString(text[1:])
	if err != nil {
		return record{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if len(b) < recordHeaderSize || len(b) != recordHeaderSize+int(b[0]) {
		return record{}, fmt.Errorf("%w: length mismatch", ErrInvalidRecord)
	}

	var sum byte
	for _, v := range b {
		sum += v
	}
	if sum != 0 {
		return record{}, fmt.Errorf("%w: sum %02X", ErrChecksum, sum)
	}

	return record{
		kind:    b[3],
		address: binary.BigEndian.Uint16(b[1:3]),
		data:    b[4 : len(b)-1],
	}, nil
}

// assemble merges the segments, later records overwrite earlier ones.
func assemble(segments []segment, limit uint32) (*image.Memory, error) {
	if len(segments) == 0 {
		return nil, ErrNoData
	}

	start, end := segments[0].address, segments[0].address
	for _, s := range segments {
		start = min(start, s.address)
		end = max(end, s.address+uint32(len(s.data)))
	}
	if limit != 0 {
		end = min(end, limit)
	}

	data := make([]byte, end-start)
	for i := range data {
		data[i] = erasedValue
	}
	for _, s := range segments {
		offset := s.address - start
		n := min(uint32(len(s.data)), end-s.address)
		copy(data[offset:offset+n], s.data[:n])
	}
	return image.New(ir.Address(start), data), nil
}
