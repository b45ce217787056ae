// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// Settings holds the monitor's runtime variables. They may be changed
// with the set command or preset in the [settings] table of a config
// file.
type Settings struct {
	HexMode         bool   `toml:"hex_mode" doc:"hexadecimal input mode"`
	DisasmLines     int    `toml:"disasm_lines" doc:"default number of lines to disassemble"`
	MemDumpBytes    int    `toml:"memdump_bytes" doc:"default number of memory bytes to dump"`
	MaxStepLines    int    `toml:"max_step_lines" doc:"max lines to disassemble when stepping"`
	StepLineDisplay bool   `toml:"step_line_display" doc:"show registers on stepped lines"`
	Trace           bool   `toml:"trace" doc:"log every executed instruction"`
	NextDisasmAddr  uint16 `toml:"next_disasm_addr" doc:"address of next disassembly"`
	NextMemDumpAddr uint16 `toml:"next_memdump_addr" doc:"address of next memory dump"`
}

// DefaultSettings returns the settings a new host starts with.
func DefaultSettings() Settings {
	return Settings{
		DisasmLines:     10,
		MemDumpBytes:    64,
		MaxStepLines:    20,
		StepLineDisplay: true,
	}
}

var errSettingType = errors.New("invalid setting type")

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	settingsType := reflect.TypeOf(Settings{})
	settingsFields = make([]settingsField, settingsType.NumField())
	for i := range settingsFields {
		f := settingsType.Field(i)
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   f.Tag.Get("doc"),
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

// Display writes every setting with its current value.
func (s *Settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var str string
		switch f.kind {
		case reflect.Uint16:
			str = fmt.Sprintf("    %-16s $%04X", f.name, uint16(v.Uint()))
		default:
			str = fmt.Sprintf("    %-16s %v", f.name, v)
		}
		fmt.Fprintf(w, "%-28s (%s)\n", str, f.doc)
	}
}

// lookup resolves a unique prefix of a setting name.
func (s *Settings) lookup(key string) (*settingsField, error) {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return nil, fmt.Errorf("setting '%s': %w", key, err)
	}
	return f, nil
}

// Kind returns the kind of the named setting, or reflect.Invalid if no
// setting matches.
func (s *Settings) Kind(key string) reflect.Kind {
	f, err := s.lookup(key)
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set assigns value to the named setting. Booleans must be set from
// bools and numeric settings from numbers.
func (s *Settings) Set(key string, value any) error {
	f, err := s.lookup(key)
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if (f.kind == reflect.Bool) != (vIn.Kind() == reflect.Bool) || !vIn.Type().ConvertibleTo(f.typ) {
		return fmt.Errorf("%s: %w", f.name, errSettingType)
	}
	reflect.ValueOf(s).Elem().Field(f.index).Set(vIn.Convert(f.typ))
	return nil
}
