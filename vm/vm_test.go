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
	"testing"
)

type C []Cell

// setup builds a small image with the given opcodes at address 0, followed
// by BYE, and preloads the stacks.
func setup(code []Op, stack, rstack C) *Instance {
	mem := NewImage(0x400)
	p := 0
	for _, op := range code {
		mem[p] = byte(op)
		p++
	}
	mem[p] = byte(OpBye)
	i, err := New(mem)
	if err != nil {
		panic(err)
	}
	for _, v := range stack {
		i.Push(v)
	}
	for _, v := range rstack {
		i.Rpush(UCell(v))
	}
	return i
}

func check(t *testing.T, name string, i *Instance, stack, rstack C) {
	t.Helper()
	if err := i.Run(); err != nil {
		t.Errorf("%s: %+v", name, err)
		return
	}
	got := i.Data()
	if len(got) != len(stack) {
		t.Errorf("%s: stack: expected %d, got %d", name, stack, got)
		return
	}
	for k := range stack {
		if stack[k] != got[k] {
			t.Errorf("%s: stack: expected %d, got %d", name, stack, got)
			return
		}
	}
	ra := i.Address()
	if len(ra) != len(rstack) {
		t.Errorf("%s: return stack: expected %d, got %v", name, rstack, ra)
		return
	}
	for k := range rstack {
		if UCell(rstack[k]) != ra[k] {
			t.Errorf("%s: return stack: expected %d, got %v", name, rstack, ra)
			return
		}
	}
}

var tests = [...]struct {
	name    string
	code    []Op
	stack   C
	data    C
	address C
}{
	{"nop", []Op{OpNop}, C{7}, C{7}, nil},
	{"drop", []Op{OpDrop}, C{1, 2}, C{1}, nil},
	{"dup", []Op{OpDup}, C{42}, C{42, 42}, nil},
	{"dup-drop", []Op{OpDup, OpDrop}, C{1, 2}, C{1, 2}, nil},
	{"swap", []Op{OpSwap}, C{1, 2}, C{2, 1}, nil},
	{"swap-swap", []Op{OpSwap, OpSwap}, C{1, 2}, C{1, 2}, nil},
	{"over", []Op{OpOver}, C{1, 2}, C{1, 2, 1}, nil},
	{"rot", []Op{OpRot}, C{1, 2, 3}, C{2, 3, 1}, nil},
	{"2drop", []Op{OpDDrop}, C{1, 2, 3}, C{1}, nil},
	{"2dup", []Op{OpDDup}, C{1, 2}, C{1, 2, 1, 2}, nil},
	{"?dup-0", []Op{OpQDup}, C{5, 0}, C{5, 0}, nil},
	{"?dup-n", []Op{OpQDup}, C{5}, C{5, 5}, nil},
	{"pick-0", []Op{OpPick}, C{10, 20, 0}, C{10, 20, 20}, nil},
	{"pick-1", []Op{OpPick}, C{10, 20, 1}, C{10, 20, 10}, nil},
	{">r-r>", []Op{OpToR, OpRFrom}, C{1, 9}, C{1, 9}, nil},
	{">r-r@", []Op{OpToR, OpRAt}, C{9}, C{9}, C{9}},
	{"sp@", []Op{OpSpAt}, C{5}, C{5, 1}, nil},
	{"sp!", []Op{OpSpSto}, C{1, 2, 3, 0}, nil, nil},
	{"0<", []Op{OpZLess}, C{-1}, C{True}, nil},
	{"0<+", []Op{OpZLess}, C{1}, C{False}, nil},
	{"and", []Op{OpAnd}, C{6, 3}, C{2}, nil},
	{"or", []Op{OpOr}, C{6, 3}, C{7}, nil},
	{"xor", []Op{OpXor}, C{-1, 3}, C{-4}, nil},
	{"not", []Op{OpInvert}, C{0}, C{-1}, nil},
	{"negate", []Op{OpNegate}, C{42}, C{-42}, nil},
	{"abs", []Op{OpAbs}, C{-42}, C{42}, nil},
	{"=", []Op{OpEqual}, C{3, 3}, C{True}, nil},
	{"=f", []Op{OpEqual}, C{3, 4}, C{False}, nil},
	{"<", []Op{OpLess}, C{1, 2}, C{True}, nil},
	{"<f", []Op{OpLess}, C{2, 1}, C{False}, nil},
	{"u<", []Op{OpULess}, C{1, -1}, C{True}, nil},
	{"u<f", []Op{OpULess}, C{-1, 1}, C{False}, nil},
	{"max", []Op{OpMax}, C{2, 5}, C{5}, nil},
	{"min", []Op{OpMin}, C{2, 5}, C{2}, nil},
	{"+", []Op{OpPlus}, C{2, 3}, C{5}, nil},
	{"-", []Op{OpSub}, C{2, 3}, C{-1}, nil},
	{"*", []Op{OpStar}, C{-3, 5}, C{-15}, nil},
	{"/", []Op{OpSlash}, C{7, 2}, C{3}, nil},
	{"/-neg", []Op{OpSlash}, C{-7, 2}, C{-3}, nil},
	{"/0", []Op{OpSlash}, C{7, 0}, C{0}, nil},
	{"mod", []Op{OpMod}, C{7, 3}, C{1}, nil},
	{"mod-neg", []Op{OpMod}, C{-7, 3}, C{-1}, nil},
	{"mod0", []Op{OpMod}, C{7, 0}, C{7}, nil},
	{"/mod", []Op{OpSlMod}, C{26, 5}, C{1, 5}, nil},
	{"/mod0", []Op{OpSlMod}, C{26, 0}, C{26, 0}, nil},
	{"um+", []Op{OpUPlus}, C{3, 4}, C{7, 0}, nil},
	{"um+carry", []Op{OpUPlus}, C{-1, 1}, C{0, 1}, nil},
	{"um*", []Op{OpUmStar}, C{-1, 2}, C{-2, 1}, nil},
	{"m*", []Op{OpMStar}, C{-1, 2}, C{-2, -1}, nil},
	{"um/mod", []Op{OpUmMod}, C{1, 0, 2}, C{1, 0}, nil},
	{"um/mod2", []Op{OpUmMod}, C{0, 1, 2}, C{0, -1 << 31}, nil},
	{"um/mod0", []Op{OpUmMod}, C{5, 1, 0}, C{5, 0}, nil},
	{"m/mod", []Op{OpMsMod}, C{7, 0, 2}, C{1, 3}, nil},
	{"m/mod-neg", []Op{OpMsMod}, C{-7, -1, 2}, C{-1, -3}, nil},
	{"*/mod", []Op{OpSsMod}, C{5, 7, 2}, C{1, 17}, nil},
	{"*/mod0", []Op{OpSsMod}, C{5, 7, 0}, C{5, 0}, nil},
	{"*/", []Op{OpStaSl}, C{5, 7, 2}, C{17}, nil},
	{"*/0", []Op{OpStaSl}, C{5, 7, 0}, C{0}, nil},
	{"dnegate", []Op{OpDNegate}, C{1, 0}, C{-1, -1}, nil},
	{"dnegate2", []Op{OpDNegate}, C{0, 1}, C{0, -1}, nil},
}

func TestCore(t *testing.T) {
	for _, test := range tests {
		i := setup(test.code, test.stack, nil)
		check(t, test.name, i, test.data, test.address)
	}
}

func TestMemOps(t *testing.T) {
	const a = 0x100
	i := setup([]Op{OpStore}, C{123, a}, nil)
	check(t, "!", i, nil, nil)
	if v := i.Mem.Cell(a); v != 123 {
		t.Errorf("!: mem[%#x] = %d", a, v)
	}

	// ! then @ round-trips: ( a n a -- n )
	i = setup([]Op{OpStore, OpBye}, C{a, 123, a}, nil)
	i.Mem[1] = byte(OpAt)
	check(t, "!@", i, C{123}, nil)

	i = setup([]Op{OpCStore}, C{0x41, a}, nil)
	check(t, "C!", i, nil, nil)
	if i.Mem[a] != 0x41 {
		t.Errorf("C!: mem[%#x] = %d", a, i.Mem[a])
	}

	i = setup([]Op{OpCAt}, nil, nil)
	i.Mem[a] = 0x42
	i.Push(a)
	check(t, "C@", i, C{0x42}, nil)

	i = setup([]Op{OpPStore}, C{5, a}, nil)
	i.Mem.SetCell(a, 10)
	check(t, "+!", i, nil, nil)
	if v := i.Mem.Cell(a); v != 15 {
		t.Errorf("+!: mem[%#x] = %d", a, v)
	}

	// 2! stores dhi at a, dlo at a+4; 2@ reads them back
	i = setup([]Op{OpDStore}, C{111, 222, a}, nil)
	check(t, "2!", i, nil, nil)
	if lo, hi := i.Mem.Cell(a+CellBytes), i.Mem.Cell(a); lo != 111 || hi != 222 {
		t.Errorf("2!: got lo=%d hi=%d", lo, hi)
	}
	i = setup([]Op{OpDStore, OpBye}, C{a, 111, 222, a}, nil)
	i.Mem[1] = byte(OpDAt)
	check(t, "2!2@", i, C{111, 222}, nil)

	// counted string
	i = setup([]Op{OpCount}, nil, nil)
	i.Mem[a] = 3
	copy(i.Mem[a+1:], "foo")
	i.Push(a)
	check(t, "COUNT", i, C{a + 1, 3}, nil)
}

func TestDoLit(t *testing.T) {
	mem := NewImage(0x400)
	mem[0] = byte(OpDoLit)
	mem.SetCell(0x10, 42)   // literal
	mem.SetCell(0x14, 0x20) // next call-cell: CFA of BYE proxy
	mem[0x20] = byte(OpBye)
	i, _ := New(mem)
	i.IP = 0x10
	check(t, "DOLIT", i, C{42}, nil)
}

func TestBranch(t *testing.T) {
	mem := NewImage(0x400)
	mem[0] = byte(OpBranch)
	mem.SetCell(0x10, 0x18)  // branch target
	mem.SetCell(0x18, 0x20)  // call-cell at target: BYE
	mem[0x20] = byte(OpBye)
	i, _ := New(mem)
	i.IP = 0x10
	check(t, "BRANCH", i, nil, nil)
}

func TestReturnPointerOps(t *testing.T) {
	i := setup([]Op{OpRpAt}, nil, C{7})
	check(t, "rp@", i, C{1}, C{7})

	i = setup([]Op{OpRpSto}, C{0}, C{7, 8})
	check(t, "rp!", i, nil, nil)
}

func TestQBranchTaken(t *testing.T) {
	mem := NewImage(0x400)
	mem[0] = byte(OpQBranch)
	mem.SetCell(0x10, 0x18) // branch target if flag is zero
	mem.SetCell(0x18, 0x20) // call-cell at target: BYE
	mem[0x20] = byte(OpBye)
	i, _ := New(mem)
	i.IP = 0x10
	i.Push(0)
	check(t, "?BRANCH taken", i, nil, nil)
}

func TestQBranchSkipped(t *testing.T) {
	mem := NewImage(0x400)
	mem[0] = byte(OpQBranch)
	mem.SetCell(0x10, 0x40) // branch target, not taken
	mem.SetCell(0x14, 0x28) // fall through: DOLIT proxy
	mem.SetCell(0x18, 7)    // its literal
	mem.SetCell(0x1c, 0x20) // then BYE
	mem[0x20] = byte(OpBye)
	mem[0x28] = byte(OpDoLit)
	mem.SetCell(0x40, 0x20)
	i, _ := New(mem)
	i.IP = 0x10
	i.Push(-1)
	check(t, "?BRANCH skipped", i, C{7}, nil)
}

func TestDoNext(t *testing.T) {
	// DONEXT decrements the loop counter on the return stack and branches
	// back while non-zero: with a count of 2, the body runs 3 times.
	mem := NewImage(0x400)
	mem[0] = byte(OpNext)
	mem.SetCell(0x10, 0x28) // loop body: DOCON proxy pushing 9
	mem.SetCell(0x14, 0x30) // DONEXT proxy
	mem.SetCell(0x18, 0x10) // branch-back target
	mem.SetCell(0x1c, 0x20) // after loop: BYE
	mem[0x20] = byte(OpBye)
	mem[0x28] = byte(OpDoCon)
	mem[0x29] = byte(OpNext)
	mem.SetCell(0x2c, 9)
	mem[0x30] = byte(OpDoNext)
	i, _ := New(mem)
	i.IP = 0x10
	i.Rpush(2)
	check(t, "DONEXT", i, C{9, 9, 9}, nil)
}

func TestColonCall(t *testing.T) {
	// a colon word pushes IP via DOLIST, runs its body, and EXIT resumes
	// the caller.
	mem := NewImage(0x400)
	mem[0] = byte(OpNext)
	mem.SetCell(0x10, 0x40) // call colon word W
	mem.SetCell(0x14, 0x20) // then BYE
	mem[0x20] = byte(OpBye)
	mem[0x40] = byte(OpDoList)
	mem.SetCell(0x44, 0x60) // W body: DOCON proxy
	mem.SetCell(0x48, 0x70) // EXIT
	mem[0x60] = byte(OpDoCon)
	mem[0x61] = byte(OpNext)
	mem.SetCell(0x64, 7)
	mem[0x70] = byte(OpExit)
	mem[0x71] = byte(OpNext)
	i, _ := New(mem)
	i.IP = 0x10
	check(t, "DOLIST/EXIT", i, C{7}, nil)
	if i.R != 0 {
		t.Errorf("return stack not unwound: R=%d", i.R)
	}
}

func TestExecute(t *testing.T) {
	mem := NewImage(0x400)
	mem[0] = byte(OpExecute)
	mem[0x40] = byte(OpDoVar)
	mem[0x41] = byte(OpNext)
	mem.SetCell(0x10, 0x20) // IP: next call is BYE
	mem[0x20] = byte(OpBye)
	i, _ := New(mem)
	i.IP = 0x10
	i.Push(0x40)
	check(t, "EXECUTE", i, C{0x44}, nil) // DOVAR pushes WP = CFA+4
}

func TestStackWrap(t *testing.T) {
	// stack indices wrap modulo capacity instead of faulting
	i := setup([]Op{OpNop}, nil, nil)
	for n := 0; n < defaultStackSize+10; n++ {
		i.Push(Cell(n))
	}
	if err := i.Run(); err != nil {
		t.Fatalf("%+v", err)
	}
	if i.S != defaultStackSize+10 {
		t.Errorf("S=%d", i.S)
	}
}

func TestRunError(t *testing.T) {
	// unaligned cell access is recovered into an error
	mem := NewImage(0x400)
	mem[0] = byte(OpAt)
	i, _ := New(mem)
	i.Push(3)
	if err := i.Run(); err == nil {
		t.Fatal("expected error on unaligned access")
	}
}

func TestInstructionCount(t *testing.T) {
	i := setup([]Op{OpNop, OpNop, OpNop}, nil, nil)
	if err := i.Run(); err != nil {
		t.Fatalf("%+v", err)
	}
	if n := i.InstructionCount(); n != 4 { // 3 NOPs + BYE
		t.Errorf("InstructionCount() = %d", n)
	}
}
