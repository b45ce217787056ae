// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSettingsSet(t *testing.T) {
	s := DefaultSettings()

	if err := s.Set("hexmode", true); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("DisasmLines", int64(4)); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("nextm", int64(0x1234)); err != nil {
		t.Fatal(err)
	}

	want := DefaultSettings()
	want.HexMode = true
	want.DisasmLines = 4
	want.NextMemDumpAddr = 0x1234
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestSettingsErrors(t *testing.T) {
	s := DefaultSettings()

	if err := s.Set("hexmode", int64(1)); !errors.Is(err, errSettingType) {
		t.Errorf("bool from int: exp errSettingType, got %v", err)
	}
	if err := s.Set("disasmlines", true); !errors.Is(err, errSettingType) {
		t.Errorf("int from bool: exp errSettingType, got %v", err)
	}
	if err := s.Set("next", int64(1)); err == nil {
		t.Error("ambiguous prefix: expected an error")
	}
	if err := s.Set("bogus", int64(1)); err == nil {
		t.Error("unknown setting: expected an error")
	}
}

func TestSettingsKind(t *testing.T) {
	s := DefaultSettings()
	tests := []struct {
		key  string
		want reflect.Kind
	}{
		{"hex", reflect.Bool},
		{"memdump", reflect.Int},
		{"nextdisasmaddr", reflect.Uint16},
		{"trace", reflect.Bool},
		{"nope", reflect.Invalid},
	}
	for _, tt := range tests {
		if got := s.Kind(tt.key); got != tt.want {
			t.Errorf("Kind(%q): exp %v, got %v", tt.key, tt.want, got)
		}
	}
}

func TestSettingsDisplay(t *testing.T) {
	s := DefaultSettings()
	s.NextDisasmAddr = 0x0600

	var buf bytes.Buffer
	s.Display(&buf)

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != len(settingsFields) {
		t.Fatalf("exp %d lines, got %d", len(settingsFields), len(lines))
	}
	if !strings.Contains(buf.String(), "NextDisasmAddr   $0600") {
		t.Errorf("address setting not shown in hex:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "DisasmLines      10") {
		t.Errorf("int setting not shown:\n%s", buf.String())
	}
}
