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
	"io"

	"github.com/pkg/errors"
)

// Cell is the raw type stored in a memory location.
type Cell int32

// UCell is the unsigned counterpart of Cell. The return stack holds UCells.
type UCell uint32

// Op is a primitive opcode. Opcodes occupy one byte in the memory image and
// their numeric positions are part of the image format.
type Op byte

// eForth Virtual Machine opcodes.
const (
	OpNop Op = iota
	OpBye
	OpQRx
	OpTxSto
	OpDoCon
	OpDoLit
	OpDoList
	OpExit
	OpExecute
	OpDoNext
	OpQBranch
	OpBranch
	OpStore
	OpAt
	OpCStore
	OpCAt
	OpRpAt
	OpRpSto
	OpRFrom
	OpRAt
	OpToR
	OpSpAt
	OpSpSto
	OpDrop
	OpDup
	OpSwap
	OpOver
	OpZLess
	OpAnd
	OpOr
	OpXor
	OpUPlus
	OpNext
	OpQDup
	OpRot
	OpDDrop
	OpDDup
	OpPlus
	OpInvert
	OpNegate
	OpDNegate
	OpSub
	OpAbs
	OpEqual
	OpULess
	OpLess
	OpUmMod
	OpMsMod
	OpSlMod
	OpMod
	OpSlash
	OpUmStar
	OpStar
	OpMStar
	OpSsMod
	OpStaSl
	OpPick
	OpPStore
	OpDStore
	OpDAt
	OpCount
	OpDoVar
	OpMax
	OpMin
)

var opcodes = [...]string{
	"NOP",
	"BYE",
	"?RX",
	"TX!",
	"DOCON",
	"DOLIT",
	"DOLIST",
	"EXIT",
	"EXECUTE",
	"DONEXT",
	"?BRANCH",
	"BRANCH",
	"!",
	"@",
	"C!",
	"C@",
	"rp@",
	"rp!",
	"R>",
	"R@",
	">R",
	"sp@",
	"sp!",
	"DROP",
	"DUP",
	"SWAP",
	"OVER",
	"0<",
	"AND",
	"OR",
	"XOR",
	"UM+",
	"NEXT",
	"?DUP",
	"ROT",
	"2DROP",
	"2DUP",
	"+",
	"NOT",
	"NEGATE",
	"DNEGATE",
	"-",
	"ABS",
	"=",
	"U<",
	"<",
	"UM/MOD",
	"M/MOD",
	"/MOD",
	"MOD",
	"/",
	"UM*",
	"*",
	"M*",
	"*/MOD",
	"*/",
	"PICK",
	"+!",
	"2!",
	"2@",
	"COUNT",
	"DOVAR",
	"MAX",
	"MIN",
}

// Name returns the canonical Forth name of an opcode, or the empty string for
// values outside the opcode space.
func (op Op) Name() string {
	if int(op) < len(opcodes) {
		return opcodes[op]
	}
	return ""
}

// Option interface
type Option func(*Instance) error

// stack indices wrap by masking, so any other size would corrupt the index
// arithmetic.
func checkSize(size int) error {
	if size < 2 || size&(size-1) != 0 {
		return errors.Errorf("invalid stack size %d: must be a power of two", size)
	}
	return nil
}

// DataSize sets the data stack size. The size must be a power of two.
func DataSize(size int) Option {
	return func(i *Instance) error {
		if err := checkSize(size); err != nil {
			return err
		}
		i.data = make([]Cell, size)
		i.smask = size - 1
		return nil
	}
}

// ReturnSize sets the return stack size. The size must be a power of two.
func ReturnSize(size int) Option {
	return func(i *Instance) error {
		if err := checkSize(size); err != nil {
			return err
		}
		i.rack = make([]UCell, size)
		i.rmask = size - 1
		return nil
	}
}

// Input pushes the given io.Reader on top of the input stack.
func Input(r io.Reader) Option {
	return func(i *Instance) error { i.PushInput(r); return nil }
}

// Output sets the output Writer.
func Output(w io.Writer) Option {
	return func(i *Instance) error { i.output = w; return nil }
}

// Ticker sets a function called once per dispatched opcode. It can be used to
// yield to the host event loop, throttle the clock, or trace execution. The
// function must preserve the VM registers.
func Ticker(fn func(*Instance)) Option {
	return func(i *Instance) error { i.ticker = fn; return nil }
}

// Instance represents an eForth VM instance.
//
// PC, IP and WP are byte offsets into the memory image: PC points at the next
// opcode to dispatch, IP at the next call-cell inside a colon body, and WP at
// the parameter field of the word being executed. Tos caches the top of the
// data stack; the backing array holds the cells below it.
type Instance struct {
	PC, IP, WP int
	Tos        Cell
	S, R       int
	Mem        Image
	data       []Cell
	rack       []UCell
	smask      int
	rmask      int
	input      io.ByteReader
	output     io.Writer
	ticker     func(*Instance)
	insCount   int64
}

const defaultStackSize = 256

// New creates a new eForth Virtual Machine instance running the given memory
// image. The image must contain a bootable dictionary (see package asm) or be
// populated by the caller before Run.
func New(mem Image, opts ...Option) (*Instance, error) {
	i := &Instance{Mem: mem}
	i.Reset()
	if err := i.SetOptions(opts...); err != nil {
		return nil, err
	}
	if i.data == nil {
		i.data = make([]Cell, defaultStackSize)
		i.smask = defaultStackSize - 1
	}
	if i.rack == nil {
		i.rack = make([]UCell, defaultStackSize)
		i.rmask = defaultStackSize - 1
	}
	return i, nil
}

// SetOptions sets the provided options.
func (i *Instance) SetOptions(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the stacks and registers. The memory image is left untouched.
// WP is reset to 4 so that the DOLIST cell at address 0 enters the boot word.
func (i *Instance) Reset() {
	i.PC, i.IP, i.WP = 0, 0, CellBytes
	i.S, i.R = 0, 0
	i.Tos = 0
	i.insCount = 0
}

// Push pushes the argument on top of the data stack.
func (i *Instance) Push(v Cell) {
	i.S++
	i.data[i.S&i.smask] = i.Tos
	i.Tos = v
}

// Pop pops the value on top of the data stack and returns it.
func (i *Instance) Pop() Cell {
	v := i.Tos
	i.Tos = i.data[i.S&i.smask]
	i.S--
	return v
}

// Rpush pushes the argument on top of the return stack.
func (i *Instance) Rpush(v UCell) {
	i.R++
	i.rack[i.R&i.rmask] = v
}

// Rpop pops the value on top of the return stack and returns it.
func (i *Instance) Rpop() UCell {
	v := i.rack[i.R&i.rmask]
	i.R--
	return v
}

// Depth returns the data stack depth.
func (i *Instance) Depth() int {
	return i.S
}

// Data returns a copy of the data stack, bottom first and including the
// cached top value.
func (i *Instance) Data() []Cell {
	if i.S <= 0 {
		return nil
	}
	d := make([]Cell, 0, i.S)
	for k := 2; k <= i.S; k++ {
		d = append(d, i.data[k&i.smask])
	}
	return append(d, i.Tos)
}

// Address returns a copy of the return stack, bottom first.
func (i *Instance) Address() []UCell {
	if i.R <= 0 {
		return nil
	}
	d := make([]UCell, 0, i.R)
	for k := 1; k <= i.R; k++ {
		d = append(d, i.rack[k&i.rmask])
	}
	return d
}

// InstructionCount returns the number of opcodes dispatched so far.
func (i *Instance) InstructionCount() int64 {
	return i.insCount
}
