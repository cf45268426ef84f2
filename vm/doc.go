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

// Package vm implements the eForth bytecode virtual machine.
//
// The VM runs a single byte-addressed memory image holding both the compiled
// dictionary and all interpreter state. Opcodes occupy one byte each; cells
// are 4-byte little-endian signed integers at 4-byte aligned offsets. The
// dispatch loop fetches the opcode at PC, increments PC and executes it. The
// NEXT opcode is the inner interpreter proper: it loads the next call-cell
// from IP into PC and points WP at that word's parameter field. Primitive
// words are compiled as an opcode byte followed by a NEXT byte, so executing
// a primitive falls through to the dispatcher; colon words start with a
// DOLIST cell that nests IP on the return stack, and end with EXIT.
//
// Both stacks are fixed-size power-of-two arrays indexed modulo their
// capacity, with the top of the data stack cached in a register. Overflow
// and underflow silently wrap, as in the reference implementation; the
// kernel never relies on this.
//
// I/O is reduced to two byte streams supplied by the host: ?RX reads one
// character from the input stack (readers pushed with PushInput queue in
// front of earlier ones, which is how startup files are fed before the
// console), and TX! writes one character to the output. The VM never blocks
// anywhere else.
//
// An Instance is not safe for concurrent use; the scheduling model is
// single-threaded cooperative. Hosts that need to interleave work can use
// the Ticker option, which is invoked once per dispatched opcode.
//
// Package asm assembles the eForth kernel into a fresh image; a previously
// saved image can be booted directly with Load.
package vm
