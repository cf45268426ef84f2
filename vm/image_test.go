// This file is part of eforth - https://github.com/db47h/eforth
//
// Copyright 2016 Denis Bernard <db047h@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vm

import (
	"path/filepath"
	"testing"
)

func TestImageCellView(t *testing.T) {
	m := NewImage(64)
	m.SetCell(8, -4)
	if v := m.Cell(8); v != -4 {
		t.Errorf("Cell(8) = %d", v)
	}
	// little-endian byte view of the same cell
	if m[8] != 0xfc || m[9] != 0xff || m[10] != 0xff || m[11] != 0xff {
		t.Errorf("byte view = % x", m[8:12])
	}
	m[8] = 0x2a
	m[9], m[10], m[11] = 0, 0, 0
	if v := m.Cell(8); v != 42 {
		t.Errorf("Cell(8) = %d", v)
	}
}

func TestImageAlignment(t *testing.T) {
	m := NewImage(64)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on unaligned cell access")
		}
	}()
	m.Cell(6)
}

func TestImageRounding(t *testing.T) {
	if n := len(NewImage(63)); n != 64 {
		t.Errorf("NewImage(63) has %d bytes", n)
	}
}

func TestImageCounted(t *testing.T) {
	m := NewImage(64)
	m[8] = 0x83 // length 3 with the IMMEDIATE bit set
	copy(m[9:], "DUP")
	if s := m.Counted(8, 0x1f); s != "DUP" {
		t.Errorf("Counted = %q", s)
	}
	m[16] = 2
	copy(m[17:], "ok")
	if s := m.Counted(16, 0xff); s != "ok" {
		t.Errorf("Counted = %q", s)
	}
}

func TestImageSaveLoad(t *testing.T) {
	name := filepath.Join(t.TempDir(), "eforthImage")
	m := NewImage(256)
	for k := 0; k < 256; k += CellBytes {
		m.SetCell(k, Cell(k)*3-128)
	}
	if err := Save(name, m, 128); err != nil {
		t.Fatalf("%+v", err)
	}
	m2, n, err := Load(name, 512)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if n != 128 {
		t.Errorf("loaded %d bytes", n)
	}
	if len(m2) != 512 {
		t.Errorf("image size %d", len(m2))
	}
	for k := 0; k < 128; k += CellBytes {
		if m2.Cell(k) != m.Cell(k) {
			t.Fatalf("cell %#x: %d != %d", k, m2.Cell(k), m.Cell(k))
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, _, err := Load(filepath.Join(t.TempDir(), "nope"), 0); err == nil {
		t.Error("expected error")
	}
}
