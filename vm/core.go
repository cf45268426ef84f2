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
	"github.com/pkg/errors"
)

// Forth truth values.
const (
	False Cell = 0
	True  Cell = -1
)

func flag(b bool) Cell {
	if b {
		return True
	}
	return False
}

// next is the inner interpreter step: fetch the next call-cell at IP (a code
// field address), point WP at its parameter field and advance IP.
func (i *Instance) next() {
	i.PC = int(i.Mem.Cell(i.IP))
	i.WP = i.PC + CellBytes
	i.IP += CellBytes
}

// addr converts a cell to a byte offset, treating it as unsigned.
func addr(v Cell) int {
	return int(UCell(v))
}

// Run starts execution of the VM at the current PC.
//
// Run returns nil when the program executes BYE. When the last input stream
// is exhausted, Run returns an error wrapping io.EOF; this is the normal exit
// condition in most use cases and can be detected with errors.Cause.
//
// If an internal error occurs (unaligned cell access, address out of range),
// the panic is recovered and returned as an error annotated with the VM
// registers; PC will point one past the opcode that triggered it.
func (i *Instance) Run() (err error) {
	defer func() {
		if e := recover(); e != nil {
			switch e := e.(type) {
			case error:
				err = errors.Wrapf(e, "recovered error @pc=%d ip=%d, stack %d/%d, rstack %d/%d",
					i.PC, i.IP, i.S, len(i.data), i.R, len(i.rack))
			default:
				panic(e)
			}
		}
	}()
	for {
		if i.ticker != nil {
			i.ticker(i)
		}
		op := Op(i.Mem[i.PC])
		i.PC++
		i.insCount++
		switch op {
		case OpNop:
			// nothing
		case OpBye:
			return nil
		case OpRpAt: // ( -- n )
			i.Push(Cell(i.R))
		case OpRpSto: // ( n -- )
			i.R = int(UCell(i.Tos))
			i.Pop()
		case OpSpAt: // ( -- n )
			i.Push(Cell(i.S))
		case OpSpSto: // ( n -- )
			i.S = int(UCell(i.Tos))
			i.Tos = 0
		case OpQRx: // ( -- c t | f )
			i.flush()
			c, e := i.readByte()
			if e != nil {
				i.Push(False)
				return errors.Wrap(e, "input")
			}
			i.Push(Cell(c))
			if c != 0 {
				i.Push(True)
			}
		case OpTxSto: // ( c -- )
			c := byte(i.Tos)
			i.Pop()
			if e := i.writeByte(c); e != nil {
				return e
			}
		case OpDoCon: // ( -- n )
			i.Push(i.Mem.Cell(i.WP))
		case OpDoLit: // ( -- w )
			i.Push(i.Mem.Cell(i.IP))
			i.IP += CellBytes
			i.next()
		case OpDoList: // ( -- )
			i.Rpush(UCell(i.IP))
			i.IP = i.WP
			i.next()
		case OpExit: // ( -- )
			i.IP = int(i.Rpop())
			i.next()
		case OpExecute: // ( a -- )
			i.PC = addr(i.Tos)
			i.WP = i.PC + CellBytes
			i.Pop()
		case OpDoNext: // ( -- )
			r := &i.rack[i.R&i.rmask]
			if *r != 0 {
				*r--
				i.IP = int(i.Mem.Cell(i.IP))
			} else {
				i.IP += CellBytes
				i.R--
			}
			i.next()
		case OpQBranch: // ( f -- )
			if i.Tos != 0 {
				i.IP += CellBytes
			} else {
				i.IP = int(i.Mem.Cell(i.IP))
			}
			i.Pop()
			i.next()
		case OpBranch: // ( -- )
			i.IP = int(i.Mem.Cell(i.IP))
			i.next()
		case OpStore: // ( n a -- )
			i.Mem.SetCell(addr(i.Tos), i.data[i.S&i.smask])
			i.S--
			i.Pop()
		case OpAt: // ( a -- n )
			i.Tos = i.Mem.Cell(addr(i.Tos))
		case OpCStore: // ( c b -- )
			i.Mem[addr(i.Tos)] = byte(i.data[i.S&i.smask])
			i.S--
			i.Pop()
		case OpCAt: // ( b -- c )
			i.Tos = Cell(i.Mem[addr(i.Tos)])
		case OpRFrom: // ( -- w )
			i.Push(Cell(i.Rpop()))
		case OpRAt: // ( -- w )
			i.Push(Cell(i.rack[i.R&i.rmask]))
		case OpToR: // ( w -- )
			i.Rpush(UCell(i.Tos))
			i.Pop()
		case OpDrop: // ( w -- )
			i.Pop()
		case OpDup: // ( w -- w w )
			i.S++
			i.data[i.S&i.smask] = i.Tos
		case OpSwap: // ( w1 w2 -- w2 w1 )
			i.Tos, i.data[i.S&i.smask] = i.data[i.S&i.smask], i.Tos
		case OpOver: // ( w1 w2 -- w1 w2 w1 )
			i.Push(i.data[i.S&i.smask])
		case OpZLess: // ( n -- f )
			i.Tos = flag(i.Tos < 0)
		case OpAnd: // ( w w -- w )
			i.Tos &= i.data[i.S&i.smask]
			i.S--
		case OpOr: // ( w w -- w )
			i.Tos |= i.data[i.S&i.smask]
			i.S--
		case OpXor: // ( w w -- w )
			i.Tos ^= i.data[i.S&i.smask]
			i.S--
		case OpUPlus: // ( u1 u2 -- u3 c )
			s := i.S & i.smask
			i.data[s] += i.Tos
			// carry flag is 0/1, not a Forth truth value
			if UCell(i.data[s]) < UCell(i.Tos) {
				i.Tos = 1
			} else {
				i.Tos = 0
			}
		case OpNext:
			i.next()
		case OpQDup: // ( w -- w w | 0 )
			if i.Tos != 0 {
				i.S++
				i.data[i.S&i.smask] = i.Tos
			}
		case OpRot: // ( w1 w2 w3 -- w2 w3 w1 )
			s0, s1 := i.S&i.smask, (i.S-1)&i.smask
			tmp := i.data[s1]
			i.data[s1] = i.data[s0]
			i.data[s0] = i.Tos
			i.Tos = tmp
		case OpDDrop: // ( w w -- )
			i.Pop()
			i.Pop()
		case OpDDup: // ( w1 w2 -- w1 w2 w1 w2 )
			i.Push(i.data[i.S&i.smask])
			i.Push(i.data[i.S&i.smask])
		case OpPlus: // ( w w -- sum )
			i.Tos += i.data[i.S&i.smask]
			i.S--
		case OpInvert: // ( w -- w )
			i.Tos = -i.Tos - 1
		case OpNegate: // ( n -- -n )
			i.Tos = -i.Tos
		case OpDNegate: // ( d -- -d )
			s := i.S & i.smask
			n := -(int64(i.Tos)<<32 | int64(UCell(i.data[s])))
			i.data[s] = Cell(UCell(n))
			i.Tos = Cell(n >> 32)
		case OpSub: // ( n1 n2 -- n1-n2 )
			i.Tos = i.data[i.S&i.smask] - i.Tos
			i.S--
		case OpAbs: // ( n -- n )
			if i.Tos < 0 {
				i.Tos = -i.Tos
			}
		case OpEqual: // ( w w -- f )
			i.Tos = flag(i.data[i.S&i.smask] == i.Tos)
			i.S--
		case OpULess: // ( u1 u2 -- f )
			i.Tos = flag(UCell(i.data[i.S&i.smask]) < UCell(i.Tos))
			i.S--
		case OpLess: // ( n1 n2 -- f )
			i.Tos = flag(i.data[i.S&i.smask] < i.Tos)
			i.S--
		case OpUmMod: // ( udl udh u -- ur uq )
			u := UCell(i.Tos)
			hi := UCell(i.data[i.S&i.smask])
			lo := UCell(i.data[(i.S-1)&i.smask])
			i.S--
			if u == 0 {
				i.Tos = 0 // remainder slot keeps udl
				break
			}
			n := uint64(hi)<<32 | uint64(lo)
			i.data[i.S&i.smask] = Cell(UCell(n % uint64(u)))
			i.Tos = Cell(UCell(n / uint64(u)))
		case OpMsMod: // ( d n -- r q )
			d := int64(i.Tos)
			hi := int64(i.data[i.S&i.smask])
			lo := int64(UCell(i.data[(i.S-1)&i.smask]))
			i.S--
			if d == 0 {
				i.Tos = 0
				break
			}
			n := hi<<32 | lo
			i.data[i.S&i.smask] = Cell(n % d)
			i.Tos = Cell(n / d)
		case OpSlMod: // ( n1 n2 -- r q )
			if i.Tos != 0 {
				s := i.S & i.smask
				q := i.data[s] / i.Tos
				i.data[s] %= i.Tos
				i.Tos = q
			}
		case OpMod: // ( n n -- r )
			if i.Tos != 0 {
				i.Tos = i.data[i.S&i.smask] % i.Tos
			} else {
				i.Tos = i.data[i.S&i.smask]
			}
			i.S--
		case OpSlash: // ( n n -- q )
			if i.Tos != 0 {
				i.Tos = i.data[i.S&i.smask] / i.Tos
			} else {
				i.Tos = 0
			}
			i.S--
		case OpUmStar: // ( u1 u2 -- ud )
			s := i.S & i.smask
			m := uint64(UCell(i.data[s])) * uint64(UCell(i.Tos))
			i.data[s] = Cell(UCell(m))
			i.Tos = Cell(UCell(m >> 32))
		case OpStar: // ( n n -- n )
			i.Tos *= i.data[i.S&i.smask]
			i.S--
		case OpMStar: // ( n1 n2 -- d )
			s := i.S & i.smask
			m := int64(i.data[s]) * int64(i.Tos)
			i.data[s] = Cell(UCell(m))
			i.Tos = Cell(m >> 32)
		case OpSsMod: // ( n1 n2 n3 -- r q )
			d := int64(i.Tos)
			n := int64(i.data[(i.S-1)&i.smask]) * int64(i.data[i.S&i.smask])
			i.S--
			if d == 0 {
				i.Tos = 0
				break
			}
			i.data[i.S&i.smask] = Cell(n % d)
			i.Tos = Cell(n / d)
		case OpStaSl: // ( n1 n2 n3 -- q )
			d := int64(i.Tos)
			n := int64(i.data[(i.S-1)&i.smask]) * int64(i.data[i.S&i.smask])
			i.S -= 2
			if d == 0 {
				i.Tos = 0
			} else {
				i.Tos = Cell(n / d)
			}
		case OpPick: // ( ... +n -- ... w )
			i.Tos = i.data[(i.S-int(i.Tos))&i.smask]
		case OpPStore: // ( n a -- )
			a := addr(i.Tos)
			i.Mem.SetCell(a, i.Mem.Cell(a)+i.data[i.S&i.smask])
			i.S--
			i.Pop()
		case OpDStore: // ( dlo dhi a -- )
			a := addr(i.Tos)
			i.Mem.SetCell(a, i.data[i.S&i.smask])
			i.Mem.SetCell(a+CellBytes, i.data[(i.S-1)&i.smask])
			i.S -= 2
			i.Pop()
		case OpDAt: // ( a -- dlo dhi )
			a := addr(i.Tos)
			i.S++
			i.data[i.S&i.smask] = i.Mem.Cell(a + CellBytes)
			i.Tos = i.Mem.Cell(a)
		case OpCount: // ( b -- b+1 n )
			i.S++
			i.data[i.S&i.smask] = i.Tos + 1
			i.Tos = Cell(i.Mem[addr(i.Tos)])
		case OpDoVar: // ( -- a )
			i.Push(Cell(i.WP))
		case OpMax: // ( n1 n2 -- n )
			if i.Tos < i.data[i.S&i.smask] {
				i.Pop()
			} else {
				i.S--
			}
		case OpMin: // ( n1 n2 -- n )
			if i.Tos < i.data[i.S&i.smask] {
				i.S--
			} else {
				i.Pop()
			}
		default:
			return errors.Errorf("invalid opcode %d @pc=%d", op, i.PC-1)
		}
	}
}
