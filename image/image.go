// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package image reads memory images and stores them into an emulated
// address space.
package image

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/fake6502/cpu"
)

// Errors
var (
	ErrSyntax   = errors.New("hex dump syntax error")
	ErrTooLarge = errors.New("image does not fit in memory")
)

// A Segment is a run of bytes to be stored at an address.
type Segment struct {
	Addr uint16
	Data []byte
}

// End returns the address one past the last byte of the segment.
func (s Segment) End() int {
	return int(s.Addr) + len(s.Data)
}

// ParseHexDump reads a text hex dump. Each line holds a hexadecimal
// address, a colon and a list of hex bytes:
//
//	0600: a9 01 8d 00 02
//
// Blank lines and lines starting with '#' are ignored. Bytes may also be
// written without separating spaces.
func ParseHexDump(r io.Reader) ([]Segment, error) {
	var segs []Segment
	scan := bufio.NewScanner(r)
	lineno := 0
	for scan.Scan() {
		lineno++
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		off, octets, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':': %w", lineno, ErrSyntax)
		}
		addr, err := strconv.ParseUint(strings.TrimSpace(off), 16, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad address %q: %w", lineno, off, ErrSyntax)
		}

		digits := strings.Join(strings.Fields(octets), "")
		data, err := hex.DecodeString(digits)
		if err != nil {
			return nil, fmt.Errorf("line %d: %v: %w", lineno, err, ErrSyntax)
		}
		seg := Segment{Addr: uint16(addr), Data: data}
		if seg.End() > 0x10000 {
			return nil, fmt.Errorf("line %d: %w", lineno, ErrTooLarge)
		}
		segs = append(segs, seg)
	}
	if err := scan.Err(); err != nil {
		return nil, err
	}
	return segs, nil
}

// ReadBinary reads a raw binary image to be stored at addr.
func ReadBinary(r io.Reader, addr uint16) (Segment, error) {
	limit := 0x10000 - int64(addr)
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Segment{}, err
	}
	if int64(len(data)) > limit {
		return Segment{}, ErrTooLarge
	}
	return Segment{Addr: addr, Data: data}, nil
}

// Load stores every segment into memory through the memory interface.
// It returns the number of bytes stored.
func Load(m cpu.Memory, segs ...Segment) int {
	n := 0
	for _, s := range segs {
		for i, v := range s.Data {
			m.StoreByte(s.Addr+uint16(i), v)
		}
		n += len(s.Data)
	}
	return n
}

// MustParseHexDump is like ParseHexDump on a string, but panics on error.
// It simplifies embedding small programs in tests.
func MustParseHexDump(dump string) []Segment {
	segs, err := ParseHexDump(strings.NewReader(dump))
	if err != nil {
		panic(err)
	}
	return segs
}
