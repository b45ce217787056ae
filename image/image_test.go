// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package image

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/beevik/fake6502/cpu"
)

func TestParseHexDump(t *testing.T) {
	tests := []struct {
		dump string
		want []Segment
	}{
		{
			dump: `01f0: 0f 0e 0d`,
			want: []Segment{{0x01f0, []byte{0x0f, 0x0e, 0x0d}}},
		},
		{
			dump: `
# reset vector
fffc: 00 06

0600: a9018d0002`,
			want: []Segment{
				{0xfffc, []byte{0x00, 0x06}},
				{0x0600, []byte{0xa9, 0x01, 0x8d, 0x00, 0x02}},
			},
		},
	}

	for _, tt := range tests {
		got, err := ParseHexDump(strings.NewReader(tt.dump))
		if err != nil {
			t.Fatalf("ParseHexDump(%q): %v", tt.dump, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseHexDump(%q) mismatch (-want +got):\n%s", tt.dump, diff)
		}
	}
}

func TestParseHexDumpErrors(t *testing.T) {
	tests := []struct {
		dump string
		want error
	}{
		{"0600 a9 01", ErrSyntax},
		{"zz00: a9", ErrSyntax},
		{"0600: a9 0", ErrSyntax},
		{"0600: a9 xx", ErrSyntax},
		{"ffff: 01 02", ErrTooLarge},
	}

	for _, tt := range tests {
		_, err := ParseHexDump(strings.NewReader(tt.dump))
		if !errors.Is(err, tt.want) {
			t.Errorf("ParseHexDump(%q) error = %v, want %v", tt.dump, err, tt.want)
		}
	}
}

func TestReadBinary(t *testing.T) {
	seg, err := ReadBinary(bytes.NewReader([]byte{1, 2, 3}), 0xfffd)
	if err != nil {
		t.Fatal(err)
	}
	if seg.End() != 0x10000 {
		t.Errorf("End() = $%X, want $10000", seg.End())
	}

	_, err = ReadBinary(bytes.NewReader([]byte{1, 2, 3, 4}), 0xfffd)
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized image error = %v, want %v", err, ErrTooLarge)
	}
}

func TestLoad(t *testing.T) {
	mem := cpu.NewFlatMemory()
	n := Load(mem, MustParseHexDump(`
0200: de ad
1000: be ef 00`)...)
	if n != 5 {
		t.Errorf("Load stored %d bytes, want 5", n)
	}

	got := make([]byte, 3)
	mem.LoadBytes(0x1000, got)
	if diff := cmp.Diff([]byte{0xbe, 0xef, 0x00}, got); diff != "" {
		t.Errorf("memory mismatch (-want +got):\n%s", diff)
	}
	if v := mem.LoadByte(0x0201); v != 0xad {
		t.Errorf("$0201 = $%02X, want $AD", v)
	}
}
