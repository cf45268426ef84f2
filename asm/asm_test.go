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
	"testing"

	"github.com/db47h/eforth/vm"
)

func testAsm() (*Assembler, vm.Image) {
	mem := vm.NewImage(0x1000)
	a := New(mem)
	// plausible stand-ins for the branch primitives
	a.UseBranches(0x1000, 0x1004, 0x1008, 0x100c)
	a.UseStrings(0x1010, 0x1014, 0x1018)
	return a, mem
}

func TestHeaderLayout(t *testing.T) {
	a, mem := testAsm()
	cfa := a.Code("DUP", vm.OpDup, vm.OpNext, 0, 0)
	if err := a.Err(); err != nil {
		t.Fatal(err)
	}
	// link cell of the first word is 0
	if link := mem.Cell(DictAddr); link != 0 {
		t.Errorf("link = %d", link)
	}
	nfa := DictAddr + vm.CellBytes
	if mem[nfa] != 3 {
		t.Errorf("length byte = %#x", mem[nfa])
	}
	if s := mem.Counted(nfa, 0x1f); s != "DUP" {
		t.Errorf("name = %q", s)
	}
	// length byte plus 3 name characters end exactly on a cell boundary
	if int(cfa) != nfa+4 {
		t.Errorf("cfa = %#x", cfa)
	}
	if vm.Op(mem[cfa]) != vm.OpDup || vm.Op(mem[cfa+1]) != vm.OpNext {
		t.Errorf("code field = % x", mem[cfa:cfa+4])
	}
	if a.Here()&(vm.CellBytes-1) != 0 {
		t.Errorf("unaligned HERE %#x", a.Here())
	}

	// second word links back to the first
	a.Code("SWAP", vm.OpSwap, vm.OpNext, 0, 0)
	if link := mem.Cell(int(cfa) + 4); link != vm.Cell(nfa) {
		t.Errorf("link = %#x, want %#x", link, nfa)
	}
	if a.Last() != vm.Cell(cfa)+8 {
		t.Errorf("Last() = %#x", a.Last())
	}
}

func TestImmedFlag(t *testing.T) {
	a, mem := testAsm()
	a.Immed("X", 0x42)
	if err := a.Err(); err != nil {
		t.Fatal(err)
	}
	if lex := mem[a.Last()]; lex != Immediate|1 {
		t.Errorf("length byte = %#x", lex)
	}
}

func TestColonBody(t *testing.T) {
	a, mem := testAsm()
	cfa := a.Colon("T", 0x40, 0x44, 0x48)
	if err := a.Err(); err != nil {
		t.Fatal(err)
	}
	want := []vm.Cell{vm.Cell(vm.OpDoList), 0x40, 0x44, 0x48}
	for k, w := range want {
		if v := mem.Cell(int(cfa) + k*vm.CellBytes); v != w {
			t.Errorf("cell %d = %#x, want %#x", k, v, w)
		}
	}
}

func TestIfThenBackpatch(t *testing.T) {
	a, mem := testAsm()
	a.Colon("T", 0x40)
	a.If(0x44)
	hole := a.Here() - 2*vm.CellBytes
	a.Then(0x48)
	if err := a.Err(); err != nil {
		t.Fatal(err)
	}
	// the hole is patched to the address of the cell holding 0x48
	if got := mem.Cell(hole); got != vm.Cell(hole)+2*vm.CellBytes {
		t.Errorf("hole = %#x, want %#x", got, hole+2*vm.CellBytes)
	}
}

func TestBeginUntil(t *testing.T) {
	a, mem := testAsm()
	a.Colon("T")
	top := a.Here()
	a.Begin(0x40)
	a.Until()
	if err := a.Err(); err != nil {
		t.Fatal(err)
	}
	// ?BRANCH cell followed by the loop-top address
	if got := mem.Cell(a.Here() - vm.CellBytes); got != vm.Cell(top) {
		t.Errorf("branch target = %#x, want %#x", got, top)
	}
}

func TestWhileRepeat(t *testing.T) {
	a, mem := testAsm()
	a.Colon("T")
	top := a.Here()
	a.Begin(0x40)
	a.While(0x44)
	a.Repeat(0x48)
	if err := a.Err(); err != nil {
		t.Fatal(err)
	}
	end := a.Here()
	// REPEAT branches back to the loop top...
	if got := mem.Cell(end - 2*vm.CellBytes); got != vm.Cell(top) {
		t.Errorf("branch target = %#x, want %#x", got, top)
	}
	// ... and the WHILE hole points past it, at the 0x48 cell
	hole := top + 2*vm.CellBytes // after the 0x40 and ?BRANCH cells
	if got := mem.Cell(hole); got != vm.Cell(end)-vm.CellBytes {
		t.Errorf("while hole = %#x, want %#x", got, end-vm.CellBytes)
	}
}

func TestUnbalanced(t *testing.T) {
	a, _ := testAsm()
	a.Colon("T")
	a.Then() // nothing to patch
	if a.Err() == nil {
		t.Error("expected unbalanced control structure error")
	}

	a, _ = testAsm()
	a.Colon("T")
	a.If()
	a.Code("U", vm.OpNop, vm.OpNext, 0, 0) // new definition with a pending hole
	if a.Err() == nil {
		t.Error("expected unbalanced control structure error")
	}
}

func TestDotQEmission(t *testing.T) {
	a, mem := testAsm()
	a.Colon("T")
	p := a.Here()
	a.DotQ("hi!")
	if err := a.Err(); err != nil {
		t.Fatal(err)
	}
	if got := mem.Cell(p); got != 0x1010 {
		t.Errorf("string word = %#x", got)
	}
	if s := mem.Counted(p+vm.CellBytes, 0xff); s != "hi!" {
		t.Errorf("string = %q", s)
	}
	if a.Here()&(vm.CellBytes-1) != 0 {
		t.Errorf("unaligned HERE %#x", a.Here())
	}
}

func TestOrgAlignment(t *testing.T) {
	a, _ := testAsm()
	a.Org(0x123)
	if a.Err() == nil {
		t.Error("expected error on unaligned org")
	}
}
