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

// Package forth provides host-side helpers tied to the eForth dictionary
// format: walking the linked name list, case-insensitive lookup and decoding
// word names. These mirror the kernel words CONTEXT, find and NAME> and are
// meant for tooling and tests; the VM itself never calls into this package.
package forth

import (
	"github.com/db47h/eforth/asm"
	"github.com/db47h/eforth/vm"
)

// nameLenMask extracts the name length from a length byte, dropping the
// IMMEDIATE and COMPILE-ONLY bits.
const nameLenMask = 0x1f

// Context returns the name field address of the most recent word in the
// search order (the head of the dictionary linked list).
func Context(mem vm.Image) vm.Cell {
	return mem.Cell(asm.AddrContext)
}

// Here returns the dictionary pointer CP.
func Here(mem vm.Image) int {
	return int(mem.Cell(asm.AddrCP))
}

// WordName returns the name of the word whose name field is at nfa.
func WordName(mem vm.Image, nfa vm.Cell) string {
	return mem.Counted(int(nfa), nameLenMask)
}

// CodeFor returns the code field address of the word whose name field is at
// nfa, like the kernel word NAME>.
func CodeFor(mem vm.Image, nfa vm.Cell) vm.Cell {
	n := int(mem[nfa] & nameLenMask)
	return (nfa + 1 + vm.Cell(n) + vm.CellBytes - 1) &^ (vm.CellBytes - 1)
}

// link returns the name field address of the word preceding nfa, or 0.
func link(mem vm.Image, nfa vm.Cell) vm.Cell {
	return mem.Cell(int(nfa) - vm.CellBytes)
}

// Words returns the names of all words reachable from CONTEXT, most recent
// first. A malformed list is truncated rather than looped over forever.
func Words(mem vm.Image) []string {
	var names []string
	for nfa := Context(mem); nfa != 0 && len(names) < len(mem)/8; nfa = link(mem, nfa) {
		names = append(names, WordName(mem, nfa))
	}
	return names
}

// sameChar compares two name characters the way the kernel's wupper does:
// both sides are masked with 0x5f, which folds case for ASCII letters.
func sameChar(a, b byte) bool {
	return a&0x5f == b&0x5f
}

// Find looks name up in the dictionary, case-insensitively, and returns the
// code field address of the first match.
func Find(mem vm.Image, name string) (cfa vm.Cell, ok bool) {
	for nfa := Context(mem); nfa != 0; nfa = link(mem, nfa) {
		if int(mem[nfa]&nameLenMask) != len(name) {
			continue
		}
		match := true
		for k := 0; k < len(name); k++ {
			if !sameChar(mem[int(nfa)+1+k], name[k]) {
				match = false
				break
			}
		}
		if match {
			return CodeFor(mem, nfa), true
		}
	}
	return 0, false
}
