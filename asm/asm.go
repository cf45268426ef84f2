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

package asm

import (
	"fmt"
	"strings"

	"github.com/db47h/eforth/vm"
)

// Memory image layout. These offsets are baked into the kernel as DOCON
// constants and must stay stable once an image has been assembled.
const (
	BootAddr = 0x000 // boot vector: DOLIST cell + CFA of COLD
	TvarAddr = 0x080 // scratch user block: HLD SPAN >IN #TIB
	UvarAddr = 0x090 // user block: 'TIB BASE CONTEXT CP LAST 'EVAL 'ABORT tmp
	TibAddr  = 0x100 // terminal input buffer
	TibSize  = 0x80
	DictAddr = 0x200 // dictionary grows upward from here
)

// User variable cell addresses.
const (
	AddrHld     = TvarAddr
	AddrSpan    = TvarAddr + 1*vm.CellBytes
	AddrIn      = TvarAddr + 2*vm.CellBytes
	AddrNTib    = TvarAddr + 3*vm.CellBytes
	AddrTTib    = UvarAddr
	AddrBase    = UvarAddr + 1*vm.CellBytes
	AddrContext = UvarAddr + 2*vm.CellBytes
	AddrCP      = UvarAddr + 3*vm.CellBytes
	AddrLast    = UvarAddr + 4*vm.CellBytes
	AddrEval    = UvarAddr + 5*vm.CellBytes
	AddrAbort   = UvarAddr + 6*vm.CellBytes
	AddrTmp     = UvarAddr + 7*vm.CellBytes
)

// Lexicon flags, stored in the high bits of a name's length byte.
const (
	Immediate   = 0x80
	CompileOnly = 0x40
)

const (
	cfDepth   = 16
	maxErrors = 10
)

// ErrAsm encapsulates errors generated by the assembler.
type ErrAsm []string

func (e ErrAsm) Error() string {
	return strings.Join(e, "\n")
}

// An Assembler writes dictionary entries into a memory image. It is the
// build-time counterpart of the colon-word compiler: Code and Colon lay down
// headers and bodies, and the structured control helpers (Begin, Until, If,
// Then, ...) backpatch branch targets through a small assembler-only
// control-flow stack.
//
// All emission keeps the write cursor cell-aligned, and the control-flow
// stack must be balanced within each definition; violations are collected
// and reported by Err.
type Assembler struct {
	mem  vm.Image
	p    int   // write cursor
	last int   // name field address of the latest header
	rack []int // control-flow stack: hole and target offsets
	errs ErrAsm
	name string // current definition, for error messages

	// code field addresses needed by the control-flow helpers and string
	// emitters; laid down early in the kernel and registered here.
	branch, qbranch, donext, tor vm.Cell
	dotq, strq, abortq           vm.Cell
}

// New returns an Assembler writing into mem, with the write cursor at the
// start of the dictionary area.
func New(mem vm.Image) *Assembler {
	return &Assembler{
		mem:  mem,
		p:    DictAddr,
		rack: make([]int, 0, cfDepth),
	}
}

// Here returns the current write cursor.
func (a *Assembler) Here() int { return a.p }

// Org moves the write cursor to p. The new cursor must be cell-aligned.
func (a *Assembler) Org(p int) {
	if p&(vm.CellBytes-1) != 0 {
		a.error("org %#x: not cell-aligned", p)
		return
	}
	a.p = p
}

// Last returns the name field address of the most recently defined word.
func (a *Assembler) Last() vm.Cell { return vm.Cell(a.last) }

// Err returns the accumulated assembly errors, or nil.
func (a *Assembler) Err() error {
	if len(a.errs) == 0 {
		return nil
	}
	return a.errs
}

func (a *Assembler) error(format string, args ...interface{}) {
	if len(a.errs) >= maxErrors {
		return
	}
	if a.name != "" {
		format = "%s: " + format
		args = append([]interface{}{a.name}, args...)
	}
	a.errs = append(a.errs, fmt.Sprintf(format, args...))
}

// data emits one cell and advances the cursor.
func (a *Assembler) data(v vm.Cell) {
	a.mem.SetCell(a.p, v)
	a.p += vm.CellBytes
}

func (a *Assembler) words(ws []vm.Cell) {
	for _, w := range ws {
		a.data(w)
	}
}

// set patches the cell at offset hole.
func (a *Assembler) set(hole int, v vm.Cell) {
	a.mem.SetCell(hole, v)
}

func (a *Assembler) cfPush(v int) {
	if len(a.rack) == cfDepth {
		a.error("control-flow stack overflow")
		return
	}
	a.rack = append(a.rack, v)
}

func (a *Assembler) cfPop() int {
	if len(a.rack) == 0 {
		a.error("unbalanced control structure")
		return 0
	}
	v := a.rack[len(a.rack)-1]
	a.rack = a.rack[:len(a.rack)-1]
	return v
}

func (a *Assembler) align() {
	for a.p&(vm.CellBytes-1) != 0 {
		a.mem[a.p] = 0
		a.p++
	}
}

// header writes a dictionary header: link cell, length byte with lexicon
// flags, name characters, and padding back to cell alignment.
func (a *Assembler) header(lex int, name string) {
	if len(a.rack) != 0 {
		a.error("unbalanced control structure at end of definition")
		a.rack = a.rack[:0]
	}
	a.name = name
	if n := len(name); n == 0 || n > 0x1f {
		a.error("invalid name length %d", n)
	}
	a.data(vm.Cell(a.last))
	a.last = a.p
	a.mem[a.p] = byte(lex)
	a.p++
	for k := 0; k < len(name); k++ {
		a.mem[a.p] = name[k]
		a.p++
	}
	a.align()
}

// Code defines a primitive word whose body is the given raw bytecode,
// padded to cell alignment. It returns the word's code field address.
func (a *Assembler) Code(name string, code ...vm.Op) vm.Cell {
	a.header(len(name)&0x1f, name)
	cfa := a.p
	for _, b := range code {
		a.mem[a.p] = byte(b)
		a.p++
	}
	a.align()
	return vm.Cell(cfa)
}

// Colon defines a colon word: a DOLIST cell followed by the given call
// cells. The body can be continued with the control-flow helpers and must
// end with an EXIT cell. Returns the word's code field address.
func (a *Assembler) Colon(name string, ws ...vm.Cell) vm.Cell {
	a.header(len(name)&0x1f, name)
	cfa := a.p
	a.data(vm.Cell(vm.OpDoList))
	a.words(ws)
	return vm.Cell(cfa)
}

// Immed is Colon with the IMMEDIATE lexicon bit set.
func (a *Assembler) Immed(name string, ws ...vm.Cell) vm.Cell {
	a.header(Immediate|(len(name)&0x1f), name)
	cfa := a.p
	a.data(vm.Cell(vm.OpDoList))
	a.words(ws)
	return vm.Cell(cfa)
}

// Label emits the given cells without a header or DOLIST and returns the
// offset of the first one. It is used for fall-through targets and for
// planting raw cells such as the boot vector and the user area.
func (a *Assembler) Label(ws ...vm.Cell) vm.Cell {
	addr := a.p
	a.words(ws)
	return vm.Cell(addr)
}

// UseBranches registers the code field addresses of the branch primitives
// used by the structured control helpers.
func (a *Assembler) UseBranches(branch, qbranch, donext, tor vm.Cell) {
	a.branch, a.qbranch, a.donext, a.tor = branch, qbranch, donext, tor
}

// UseStrings registers the code field addresses of the words heading inline
// string literals, used by DotQ, StrQ and AbortQ.
func (a *Assembler) UseStrings(dotq, strq, abortq vm.Cell) {
	a.dotq, a.strq, a.abortq = dotq, strq, abortq
}

func (a *Assembler) need(w vm.Cell, what string) bool {
	if w == 0 {
		a.error("%s not registered", what)
		return false
	}
	return true
}

// Begin starts an indefinite loop: it saves the current address as a
// backward branch target.
func (a *Assembler) Begin(ws ...vm.Cell) {
	a.cfPush(a.p)
	a.words(ws)
}

// Again closes a BEGIN loop with an unconditional backward branch.
func (a *Assembler) Again(ws ...vm.Cell) {
	if a.need(a.branch, "BRANCH") {
		a.data(a.branch)
		a.data(vm.Cell(a.cfPop()))
	}
	a.words(ws)
}

// Until closes a BEGIN loop, branching back while the flag is false.
func (a *Assembler) Until(ws ...vm.Cell) {
	if a.need(a.qbranch, "?BRANCH") {
		a.data(a.qbranch)
		a.data(vm.Cell(a.cfPop()))
	}
	a.words(ws)
}

// While emits a conditional exit hole inside a BEGIN loop; the hole is
// resolved by Repeat.
func (a *Assembler) While(ws ...vm.Cell) {
	if a.need(a.qbranch, "?BRANCH") {
		a.data(a.qbranch)
		a.data(0)
		k := a.cfPop()
		a.cfPush(a.p - vm.CellBytes)
		a.cfPush(k)
	}
	a.words(ws)
}

// Repeat closes a BEGIN ... WHILE loop: branch back to BEGIN and patch the
// WHILE hole to fall through here.
func (a *Assembler) Repeat(ws ...vm.Cell) {
	if a.need(a.branch, "BRANCH") {
		a.data(a.branch)
		a.data(vm.Cell(a.cfPop()))
		a.set(a.cfPop(), vm.Cell(a.p))
	}
	a.words(ws)
}

// If emits a conditional forward branch with an unresolved target.
func (a *Assembler) If(ws ...vm.Cell) {
	if a.need(a.qbranch, "?BRANCH") {
		a.data(a.qbranch)
		a.cfPush(a.p)
		a.data(0)
	}
	a.words(ws)
}

// Else resolves the IF hole and opens a new one skipping the else branch.
func (a *Assembler) Else(ws ...vm.Cell) {
	if a.need(a.branch, "BRANCH") {
		a.data(a.branch)
		a.data(0)
		a.set(a.cfPop(), vm.Cell(a.p))
		a.cfPush(a.p - vm.CellBytes)
	}
	a.words(ws)
}

// Then resolves the pending forward branch to the current address.
func (a *Assembler) Then(ws ...vm.Cell) {
	a.set(a.cfPop(), vm.Cell(a.p))
	a.words(ws)
}

// For starts a counted loop: push the count to the return stack and save
// the loop target.
func (a *Assembler) For(ws ...vm.Cell) {
	if a.need(a.tor, ">R") {
		a.data(a.tor)
		a.cfPush(a.p)
	}
	a.words(ws)
}

// Next closes a FOR loop with a DONEXT cell.
func (a *Assembler) Next(ws ...vm.Cell) {
	if a.need(a.donext, "DONEXT") {
		a.data(a.donext)
		a.data(vm.Cell(a.cfPop()))
	}
	a.words(ws)
}

// Aft replaces the FOR target so that the first loop pass skips ahead to
// the matching THEN.
func (a *Assembler) Aft(ws ...vm.Cell) {
	if a.need(a.branch, "BRANCH") {
		a.data(a.branch)
		a.data(0)
		a.cfPop()
		a.cfPush(a.p)
		a.cfPush(a.p - vm.CellBytes)
	}
	a.words(ws)
}

// strcpy emits a call to op followed by an inline counted string, padded to
// cell alignment.
func (a *Assembler) strcpy(op vm.Cell, s string) {
	if len(s) > 0xff {
		a.error("string literal too long (%d bytes)", len(s))
		s = s[:0xff]
	}
	a.data(op)
	a.mem[a.p] = byte(len(s))
	a.p++
	for k := 0; k < len(s); k++ {
		a.mem[a.p] = s[k]
		a.p++
	}
	a.align()
}

// DotQ compiles an inline ." string literal.
func (a *Assembler) DotQ(s string) {
	if a.need(a.dotq, `."|`) {
		a.strcpy(a.dotq, s)
	}
}

// StrQ compiles an inline $" string literal.
func (a *Assembler) StrQ(s string) {
	if a.need(a.strq, `$"|`) {
		a.strcpy(a.strq, s)
	}
}

// AbortQ compiles an inline abort" string literal.
func (a *Assembler) AbortQ(s string) {
	if a.need(a.abortq, `abort"`) {
		a.strcpy(a.abortq, s)
	}
}
