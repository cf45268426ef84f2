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

// Package asm provides the eForth macro assembler and kernel bootstrap.
//
// Bootstrap assembles a complete, self-hosting eForth dictionary into a
// fresh memory image. Most users only need that one call:
//
//	mem := vm.NewImage(1 << 16)
//	k, err := asm.Bootstrap(mem)
//	...
//	i, err := vm.New(mem, vm.Input(os.Stdin), vm.Output(os.Stdout))
//	err = i.Run()
//
// The Assembler itself is the build-time twin of the runtime colon-word
// compiler. It writes dictionary entries of the form
//
//	link cell      offset of the previous word's name field, 0 for the first
//	length byte    low 5 bits: name length; bit 7: IMMEDIATE; bit 6: COMPILE-ONLY
//	name bytes     as typed, not NUL terminated
//	padding        zero bytes up to the next cell boundary
//	code field     first executable cell of the word
//	parameters     opcode bytes for primitives, call cells for colon words
//
// Code lays down primitive proxies (an opcode byte followed by a NEXT byte),
// Colon and Immed lay down DOLIST-headed call-cell bodies, and Label emits
// raw cells for fall-through targets and boot data. The structured helpers
// Begin/Again/Until/While/Repeat, If/Else/Then and For/Next/Aft emit
// BRANCH/?BRANCH/DONEXT cells, tracking holes and targets on a small
// control-flow stack that must balance within each definition. The cursor is
// cell-aligned after every emission.
//
// The memory layout constants (BootAddr, TibAddr, DictAddr and the user
// variable addresses) are part of the image format: the kernel refers to
// them as DOCON constants, so they must not change once an image has been
// assembled and saved.
package asm
