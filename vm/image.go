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
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

// CellBytes is the size of a Cell in the memory image.
const CellBytes = 4

// Image encapsulates a VM's memory: a single byte-addressed array with an
// aliased view of 4-byte little-endian cells at 4-byte aligned offsets.
// Byte access is plain indexing; cell access goes through Cell and SetCell,
// which panic on unaligned addresses (the VM run loop converts such panics
// into errors).
type Image []byte

// NewImage returns a zeroed Image of the requested size, rounded up to a
// whole number of cells.
func NewImage(size int) Image {
	size = (size + CellBytes - 1) &^ (CellBytes - 1)
	return make(Image, size)
}

func checkAlign(a int) {
	if a&(CellBytes-1) != 0 {
		panic(errors.Errorf("unaligned cell access at %#x", a))
	}
}

// Cell reads the cell at byte offset a. The offset must be cell-aligned.
func (m Image) Cell(a int) Cell {
	checkAlign(a)
	return Cell(binary.LittleEndian.Uint32(m[a:]))
}

// SetCell writes the cell at byte offset a. The offset must be cell-aligned.
func (m Image) SetCell(a int, v Cell) {
	checkAlign(a)
	binary.LittleEndian.PutUint32(m[a:], uint32(v))
}

// Counted returns the counted string starting at byte offset a: a length
// byte followed by that many characters. Dictionary name fields keep their
// length in the low 5 bits of the first byte; use lenMask 0x1f for those and
// 0xff for plain counted strings.
func (m Image) Counted(a int, lenMask byte) string {
	n := int(m[a] & lenMask)
	if a+1+n > len(m) {
		n = len(m) - a - 1
	}
	return string(m[a+1 : a+1+n])
}

// Load loads a memory image from file fileName. The returned Image has its
// size equal to the maximum of minSize and the file size rounded up to a
// whole number of cells. It also returns the actual number of bytes read.
func Load(fileName string, minSize int) (Image, int, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open failed")
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, 0, errors.Wrap(err, "fstat failed")
	}
	sz := st.Size()
	if sz > int64((^uint(0))>>1) { // MaxInt
		return nil, 0, errors.Errorf("%v: file too large", fileName)
	}
	fileBytes := int(sz)
	imgBytes := fileBytes
	if minSize > imgBytes {
		imgBytes = minSize
	}
	m := NewImage(imgBytes)
	if _, err = io.ReadFull(bufio.NewReader(f), m[:fileBytes]); err != nil {
		return nil, fileBytes, errors.Wrap(err, "load failed")
	}
	return m, fileBytes, nil
}

// Save saves the memory image to fileName. If size is greater than zero, only
// the first size bytes are saved (rounded up to a whole number of cells);
// passing the dictionary pointer CP here keeps saved kernels small.
func Save(fileName string, m Image, size int) (err error) {
	if size <= 0 || size > len(m) {
		size = len(m)
	}
	size = (size + CellBytes - 1) &^ (CellBytes - 1)
	f, err := os.Create(fileName)
	if err != nil {
		return errors.Wrap(err, "create failed")
	}
	w := bufio.NewWriter(f)
	defer func() {
		w.Flush()
		f.Close()
		// delete file on error
		if err != nil {
			os.Remove(fileName)
		}
	}()
	if _, err = w.Write(m[:size]); err != nil {
		return errors.Wrap(err, "write failed")
	}
	return nil
}
