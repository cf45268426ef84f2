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
	"github.com/db47h/eforth/vm"

	"github.com/pkg/errors"
)

// Kernel records the entry points of a bootstrapped dictionary.
type Kernel struct {
	Cold      vm.Cell // CFA of COLD, called from the boot vector
	Quit      vm.Cell // CFA of QUIT, the outer interpreter loop
	Eval      vm.Cell // CFA of EVAL
	Interpret vm.Cell // CFA of $INTERPRET
	Compile   vm.Cell // CFA of $COMPILE
	Abort     vm.Cell // CFA of ABORT
	Context   vm.Cell // name field address of the last kernel word
	Here      int     // first free dictionary byte
}

// minImage is a safe lower bound for a bootstrapped image: kernel plus some
// working dictionary space.
const minImage = 0x4000

// Bootstrap assembles the complete eForth kernel into mem: the user
// variables, the primitive proxies, every kernel colon word, the boot vector
// at address 0 and the initial user area. The resulting image is ready to
// run from PC 0.
func Bootstrap(mem vm.Image) (*Kernel, error) {
	if len(mem) < minImage {
		return nil, errors.Errorf("image too small: %d bytes, need at least %d", len(mem), minImage)
	}
	a := New(mem)

	// Kernel variables. Each is a DOCON pushing the address of its cell in
	// the user area.
	hld := a.Code("HLD", vm.OpDoCon, vm.OpNext, 0, 0, AddrHld, 0, 0, 0)
	span := a.Code("SPAN", vm.OpDoCon, vm.OpNext, 0, 0, AddrSpan, 0, 0, 0)
	inn := a.Code(">IN", vm.OpDoCon, vm.OpNext, 0, 0, AddrIn, 0, 0, 0)
	ntib := a.Code("#TIB", vm.OpDoCon, vm.OpNext, 0, 0, AddrNTib, 0, 0, 0)
	ttib := a.Code("'TIB", vm.OpDoCon, vm.OpNext, 0, 0, AddrTTib, 0, 0, 0)
	base := a.Code("BASE", vm.OpDoCon, vm.OpNext, 0, 0, AddrBase, 0, 0, 0)
	cntxt := a.Code("CONTEXT", vm.OpDoCon, vm.OpNext, 0, 0, AddrContext, 0, 0, 0)
	cp := a.Code("CP", vm.OpDoCon, vm.OpNext, 0, 0, AddrCP, 0, 0, 0)
	lastv := a.Code("LAST", vm.OpDoCon, vm.OpNext, 0, 0, AddrLast, 0, 0, 0)
	teval := a.Code("'EVAL", vm.OpDoCon, vm.OpNext, 0, 0, AddrEval, 0, 0, 0)
	tabrt := a.Code("'ABORT", vm.OpDoCon, vm.OpNext, 0, 0, AddrAbort, 0, 0, 0)
	temp := a.Code("tmp", vm.OpDoCon, vm.OpNext, 0, 0, AddrTmp, 0, 0, 0)

	// Primitive proxies: one opcode followed by NEXT, padded to a cell.
	a.Code("NOP", vm.OpNext, 0, 0, 0)
	a.Code("BYE", vm.OpBye, vm.OpNext, 0, 0)
	qrx := a.Code("?RX", vm.OpQRx, vm.OpNext, 0, 0)
	txsto := a.Code("TX!", vm.OpTxSto, vm.OpNext, 0, 0)
	a.Code("DOCON", vm.OpDoCon, vm.OpNext, 0, 0)
	dolit := a.Code("DOLIT", vm.OpDoLit, vm.OpNext, 0, 0)
	a.Code("DOLIST", vm.OpDoList, vm.OpNext, 0, 0)
	exitt := a.Code("EXIT", vm.OpExit, vm.OpNext, 0, 0)
	execu := a.Code("EXECUTE", vm.OpExecute, vm.OpNext, 0, 0)
	donxt := a.Code("DONEXT", vm.OpDoNext, vm.OpNext, 0, 0)
	qbran := a.Code("QBRANCH", vm.OpQBranch, vm.OpNext, 0, 0)
	bran := a.Code("BRANCH", vm.OpBranch, vm.OpNext, 0, 0)
	store := a.Code("!", vm.OpStore, vm.OpNext, 0, 0)
	at := a.Code("@", vm.OpAt, vm.OpNext, 0, 0)
	cstor := a.Code("C!", vm.OpCStore, vm.OpNext, 0, 0)
	cat := a.Code("C@", vm.OpCAt, vm.OpNext, 0, 0)
	a.Code("RP@", vm.OpRpAt, vm.OpNext, 0, 0)
	rpsto := a.Code("RP!", vm.OpRpSto, vm.OpNext, 0, 0)
	a.Code("SP@", vm.OpSpAt, vm.OpNext, 0, 0)
	spsto := a.Code("SP!", vm.OpSpSto, vm.OpNext, 0, 0)
	rfrom := a.Code("R>", vm.OpRFrom, vm.OpNext, 0, 0)
	rat := a.Code("R@", vm.OpRAt, vm.OpNext, 0, 0)
	tor := a.Code(">R", vm.OpToR, vm.OpNext, 0, 0)
	drop := a.Code("DROP", vm.OpDrop, vm.OpNext, 0, 0)
	dup := a.Code("DUP", vm.OpDup, vm.OpNext, 0, 0)
	swap := a.Code("SWAP", vm.OpSwap, vm.OpNext, 0, 0)
	over := a.Code("OVER", vm.OpOver, vm.OpNext, 0, 0)
	zless := a.Code("0<", vm.OpZLess, vm.OpNext, 0, 0)
	and := a.Code("AND", vm.OpAnd, vm.OpNext, 0, 0)
	or := a.Code("OR", vm.OpOr, vm.OpNext, 0, 0)
	xor := a.Code("XOR", vm.OpXor, vm.OpNext, 0, 0)
	a.Code("UM+", vm.OpUPlus, vm.OpNext, 0, 0)
	a.Code("NEXT", vm.OpNext, vm.OpNext, 0, 0)
	qdup := a.Code("?DUP", vm.OpQDup, vm.OpNext, 0, 0)
	a.Code("ROT", vm.OpRot, vm.OpNext, 0, 0)
	ddrop := a.Code("2DROP", vm.OpDDrop, vm.OpNext, 0, 0)
	ddup := a.Code("2DUP", vm.OpDDup, vm.OpNext, 0, 0)
	plus := a.Code("+", vm.OpPlus, vm.OpNext, 0, 0)
	inver := a.Code("NOT", vm.OpInvert, vm.OpNext, 0, 0)
	negat := a.Code("NEGATE", vm.OpNegate, vm.OpNext, 0, 0)
	a.Code("DNEGATE", vm.OpDNegate, vm.OpNext, 0, 0)
	sub := a.Code("-", vm.OpSub, vm.OpNext, 0, 0)
	abs := a.Code("ABS", vm.OpAbs, vm.OpNext, 0, 0)
	equal := a.Code("=", vm.OpEqual, vm.OpNext, 0, 0)
	uless := a.Code("U<", vm.OpULess, vm.OpNext, 0, 0)
	less := a.Code("<", vm.OpLess, vm.OpNext, 0, 0)
	ummod := a.Code("UM/MOD", vm.OpUmMod, vm.OpNext, 0, 0)
	a.Code("M/MOD", vm.OpMsMod, vm.OpNext, 0, 0)
	a.Code("/MOD", vm.OpSlMod, vm.OpNext, 0, 0)
	a.Code("MOD", vm.OpMod, vm.OpNext, 0, 0)
	slash := a.Code("/", vm.OpSlash, vm.OpNext, 0, 0)
	a.Code("UM*", vm.OpUmStar, vm.OpNext, 0, 0)
	star := a.Code("*", vm.OpStar, vm.OpNext, 0, 0)
	a.Code("M*", vm.OpMStar, vm.OpNext, 0, 0)
	a.Code("*/MOD", vm.OpSsMod, vm.OpNext, 0, 0)
	a.Code("*/", vm.OpStaSl, vm.OpNext, 0, 0)
	a.Code("PICK", vm.OpPick, vm.OpNext, 0, 0)
	pstor := a.Code("+!", vm.OpPStore, vm.OpNext, 0, 0)
	a.Code("2!", vm.OpDStore, vm.OpNext, 0, 0)
	a.Code("2@", vm.OpDAt, vm.OpNext, 0, 0)
	count := a.Code("COUNT", vm.OpCount, vm.OpNext, 0, 0)
	max := a.Code("MAX", vm.OpMax, vm.OpNext, 0, 0)
	min := a.Code("MIN", vm.OpMin, vm.OpNext, 0, 0)

	// In-line constants and short combinations.
	blank := a.Code("BL", vm.OpDoCon, vm.OpNext, 0, 0, 0x20, 0, 0, 0)
	a.Code("CELL", vm.OpDoCon, vm.OpNext, 0, 0, vm.CellBytes, 0, 0, 0)
	cellp := a.Code("CELL+", vm.OpDoCon, vm.OpPlus, vm.OpNext, 0, vm.CellBytes, 0, 0, 0)
	cellm := a.Code("CELL-", vm.OpDoCon, vm.OpSub, vm.OpNext, 0, vm.CellBytes, 0, 0, 0)
	cells := a.Code("CELLS", vm.OpDoCon, vm.OpStar, vm.OpNext, 0, vm.CellBytes, 0, 0, 0)
	celld := a.Code("CELL/", vm.OpDoCon, vm.OpSlash, vm.OpNext, 0, vm.CellBytes, 0, 0, 0)
	onep := a.Code("1+", vm.OpDoCon, vm.OpPlus, vm.OpNext, 0, 1, 0, 0, 0)
	onem := a.Code("1-", vm.OpDoCon, vm.OpSub, vm.OpNext, 0, 1, 0, 0, 0)
	a.Code("DOVAR", vm.OpDoVar, vm.OpNext, 0, 0)

	a.UseBranches(bran, qbran, donxt, tor)

	// Common colon words.

	qkey := a.Colon("?KEY", qrx, exitt)
	key := a.Colon("KEY")
	a.Begin(qkey)
	a.Until(exitt)
	emit := a.Colon("EMIT", txsto, exitt)
	withi := a.Colon("WITHIN", over, sub, tor, sub, rfrom, uless, exitt)
	tchar := a.Colon(">CHAR", dolit, 0x7f, and, dup, dolit, 0x7f, blank, withi)
	a.If(drop, dolit, 0x5f)
	a.Then(exitt)
	aligned := a.Colon("ALIGNED", dolit, 3, plus, dolit, -4, and, exitt)
	here := a.Colon("HERE", cp, at, exitt)
	pad := a.Colon("PAD", here, dolit, 0x50, plus, exitt)
	tib := a.Colon("TIB", ttib, at, exitt)
	atexe := a.Colon("@EXECUTE", at, qdup)
	a.If(execu)
	a.Then(exitt)
	cmove := a.Colon("CMOVE")
	a.For()
	a.Aft(over, cat, over, cstor, tor, onep, rfrom, onep)
	a.Then()
	a.Next(ddrop, exitt)
	a.Colon("MOVE", celld)
	a.For()
	a.Aft(over, at, over, store, tor, cellp, rfrom, cellp)
	a.Then()
	a.Next(ddrop, exitt)
	a.Colon("FILL", swap)
	a.For(swap)
	a.Aft(ddup, cstor, onep)
	a.Then()
	a.Next(ddrop, exitt)

	// Number conversions.

	digit := a.Colon("DIGIT", dolit, 9, over, less, dolit, 7, and, plus, dolit, 0x30, plus, exitt)
	extrc := a.Colon("EXTRACT", dolit, 0, swap, ummod, swap, digit, exitt)
	bdigs := a.Colon("<#", pad, hld, store, exitt)
	hold := a.Colon("HOLD", hld, at, onem, dup, hld, store, cstor, exitt)
	dig := a.Colon("#", base, at, extrc, hold, exitt)
	digs := a.Colon("#S")
	a.Begin(dig, dup)
	a.While()
	a.Repeat(exitt)
	sign := a.Colon("SIGN", zless)
	a.If(dolit, 0x2d, hold)
	a.Then(exitt)
	edigs := a.Colon("#>", drop, hld, at, pad, over, sub, exitt)
	str := a.Colon("str", dup, tor, abs, bdigs, digs, rfrom, sign, edigs, exitt)
	hex := a.Colon("HEX", dolit, 16, base, store, exitt)
	a.Colon("DECIMAL", dolit, 10, base, store, exitt)
	upper := a.Colon("wupper", dolit, 0x5f5f5f5f, and, exitt)
	toupp := a.Colon(">upper", dup, dolit, 0x61, dolit, 0x7b, withi)
	a.If(dolit, 0x5f, and)
	a.Then(exitt)
	digtq := a.Colon("DIGIT?", tor, toupp, dolit, 0x30, sub, dolit, 9, over, less)
	a.If(dolit, 7, sub, dup, dolit, 10, less, or)
	a.Then(dup, rfrom, uless, exitt)
	numbq := a.Colon("NUMBER?", base, at, tor, dolit, 0, over, count, over, cat, dolit, 0x24, equal)
	a.If(hex, swap, onep, swap, onem)
	a.Then(over, cat, dolit, 0x2d, equal, tor, swap, rat, sub, swap, rat, plus, qdup)
	a.If(onem)
	a.For(dup, tor, cat, base, at, digtq)
	a.While(swap, base, at, star, plus, rfrom, onep)
	a.Next(drop, rat)
	a.If(negat)
	a.Then(swap)
	a.Else(rfrom, rfrom, ddrop, ddrop, dolit, 0)
	a.Then(dup)
	a.Then(rfrom, ddrop, rfrom, base, store, exitt)

	// Terminal output.

	space := a.Colon("SPACE", blank, emit, exitt)
	chars := a.Colon("CHARS", swap, dolit, 0, max)
	a.For()
	a.Aft(dup, emit)
	a.Then()
	a.Next(drop, exitt)
	spacs := a.Colon("SPACES", blank, chars, exitt)
	typs := a.Colon("TYPE")
	a.For()
	a.Aft(count, tchar, emit)
	a.Then()
	a.Next(drop, exitt)
	cr := a.Colon("CR", dolit, 10, dolit, 13, emit, emit, exitt)
	dostr := a.Colon("do$", rfrom, rat, rfrom, count, plus, aligned, tor, swap, tor, exitt)
	strqp := a.Colon(`$"|`, dostr, exitt)
	dotqp := a.Colon(`."|`, dostr, count, typs, exitt)
	a.Colon(".R", tor, str, rfrom, over, sub, spacs, typs, exitt)
	udotr := a.Colon("U.R", tor, bdigs, digs, edigs, rfrom, over, sub, spacs, typs, exitt)
	udot := a.Colon("U.", bdigs, digs, edigs, space, typs, exitt)
	dot := a.Colon(".", base, at, dolit, 0xa, xor)
	a.If(udot, exitt)
	a.Then(str, space, typs, exitt)
	a.Colon("?", at, dot, exitt)

	// Parser.

	pars := a.Colon("(parse)", temp, cstor, over, tor, dup)
	a.If(onem, temp, cat, blank, equal)
	a.If()
	a.For(blank, over, cat, sub, zless, inver)
	a.While(onep)
	a.Next(rfrom, drop, dolit, 0, dup, exitt)
	a.Then(rfrom)
	a.Then(over, swap)
	a.For(temp, cat, over, cat, sub, temp, cat, blank, equal)
	a.If(zless)
	a.Then()
	a.While(onep)
	a.Next(dup, tor)
	a.Else(rfrom, drop, dup, onep, tor)
	a.Then(over, sub, rfrom, rfrom, sub, exitt)
	a.Then(over, rfrom, sub, exitt)
	packs := a.Colon("PACK$", dup, tor, ddup, plus, dolit, -4, and, dolit, 0, swap, store, ddup, cstor, onep, swap, cmove, rfrom, exitt)
	parse := a.Colon("PARSE", tor, tib, inn, at, plus, ntib, at, inn, at, sub, rfrom, pars, inn, pstor, exitt)
	token := a.Colon("TOKEN", blank, parse, dolit, 0x1f, min, here, cellp, packs, exitt)
	wordd := a.Colon("WORD", parse, here, cellp, packs, exitt)
	namet := a.Colon("NAME>", count, dolit, 0x1f, and, plus, aligned, exitt)
	sameq := a.Colon("SAME?", dolit, 0x1f, and, celld)
	a.For()
	a.Aft(over, rat, cells, plus, at, upper, over, rat, cells, plus, at, upper, sub, qdup)
	a.If(rfrom, drop, exitt)
	a.Then()
	a.Then()
	a.Next(dolit, 0, exitt)
	find := a.Colon("find", swap, dup, at, temp, store, dup, at, tor, cellp, swap)
	a.Begin(at, dup)
	a.If(dup, at, dolit, -0xc1, and, upper, rat, upper, xor)
	a.If(cellp, dolit, -1)
	a.Else(cellp, temp, at, sameq)
	a.Then()
	a.Else(rfrom, drop, swap, cellm, swap, exitt)
	a.Then()
	a.While(cellm, cellm)
	a.Repeat(rfrom, drop, swap, drop, cellm, dup, namet, swap, exitt)
	nameq := a.Colon("NAME?", cntxt, find, exitt)

	// Terminal input.

	hath := a.Colon("^H", tor, over, rfrom, swap, over, xor)
	a.If(dolit, 8, emit, onem, blank, emit, dolit, 8, emit)
	a.Then(exitt)
	tap := a.Colon("TAP", dup, emit, over, cstor, onep, exitt)
	ktap := a.Colon("kTAP", dup, dolit, 0xd, xor, over, dolit, 0xa, xor, and)
	a.If(dolit, 8, xor)
	a.If(blank, tap)
	a.Else(hath)
	a.Then(exitt)
	a.Then(drop, swap, drop, dup, exitt)
	accep := a.Colon("ACCEPT", over, plus, over)
	a.Begin(ddup, xor)
	a.While(key, dup, blank, sub, dolit, 0x5f, uless)
	a.If(tap)
	a.Else(ktap)
	a.Then()
	a.Repeat(drop, over, sub, exitt)
	a.Colon("EXPECT", accep, span, store, drop, exitt)
	query := a.Colon("QUERY", tib, dolit, TibSize, accep, ntib, store, drop, dolit, 0, inn, store, exitt)

	// Text interpreter.

	abort := a.Colon("ABORT", dolit, 0, spsto, tabrt, atexe)
	aborq := a.Colon(`abort"`)
	a.UseStrings(dotqp, strqp, aborq)
	a.If(dostr, count, typs, abort)
	a.Then(dostr, drop, exitt)
	errorr := a.Colon("ERROR", space, count, typs, dolit, 0x3f, emit, dolit, 0x1b, emit, cr, abort)
	inter := a.Colon("$INTERPRET", nameq, qdup)
	a.If(cat, dolit, CompileOnly, and)
	a.AbortQ(" compile only")
	a.Label(execu, exitt)
	a.Then(numbq)
	a.If(exitt)
	a.Else(errorr)
	a.Then()
	lbrac := a.Immed("[", dolit, inter, teval, store, exitt)
	dotok := a.Colon(".OK", cr, dolit, inter, teval, at, equal)
	a.If()
	a.DotQ(" ok> ")
	a.Then(exitt)
	eval := a.Colon("EVAL")
	a.Begin(token, dup, at)
	a.While(teval, atexe)
	a.Repeat(drop, dotok, exitt)
	quit := a.Colon("QUIT", dolit, TibAddr, ttib, store, lbrac)
	a.Begin(dolit, 0, rpsto, query, eval)
	a.Again()

	// Colon word compiler.

	comma := a.Colon(",", here, dup, cellp, cp, store, store, exitt)
	liter := a.Immed("LITERAL", dolit, dolit, comma, comma, exitt)
	a.Colon("ALLOT", aligned, cp, pstor, exitt)
	strcq := a.Colon(`$,"`, dolit, 0x22, wordd, count, plus, aligned, cp, store, exitt)
	uniqu := a.Colon("?UNIQUE", dup, nameq, qdup)
	a.If(count, dolit, 0x1f, and, space, typs)
	a.DotQ(" reDef")
	a.Then(drop, exitt)
	sname := a.Colon("$,n", dup, at)
	a.If(uniqu, dup, namet, cp, store, dup, lastv, store, cellm, cntxt, at, swap, store, exitt)
	a.Then(errorr)
	tick := a.Colon("'", token, nameq)
	a.If(exitt)
	a.Then(errorr)
	a.Immed("[COMPILE]", tick, comma, exitt)
	compi := a.Colon("COMPILE", rfrom, dup, at, comma, cellp, tor, exitt)
	scomp := a.Colon("$COMPILE", nameq, qdup)
	a.If(at, dolit, Immediate, and)
	a.If(execu)
	a.Else(comma)
	a.Then(exitt)
	a.Then(numbq)
	a.If(liter, exitt)
	a.Then(errorr)
	overt := a.Colon("OVERT", lastv, at, cntxt, store, exitt)
	rbrac := a.Colon("]", dolit, scomp, teval, store, exitt)
	a.Colon(":", token, sname, rbrac, dolit, vm.Cell(vm.OpDoList), comma, exitt)
	a.Immed(";", dolit, exitt, comma, lbrac, overt, exitt)

	// Debugging tools.

	dmp := a.Colon("dm+", over, dolit, 6, udotr)
	a.For()
	a.Aft(dup, at, dolit, 9, udotr, cellp)
	a.Then()
	a.Next(exitt)
	a.Colon("DUMP", base, at, tor, hex, dolit, 0x1f, plus, dolit, 0x20, slash)
	a.For()
	a.Aft(cr, dolit, 8, ddup, dmp, tor, space, cells, typs, rfrom)
	a.Then()
	a.Next(drop, rfrom, base, store, exitt)
	a.Colon(">NAME", cntxt)
	a.Begin(at, dup)
	a.While(ddup, namet, xor)
	a.If(onem)
	a.Else(swap, drop, exitt)
	a.Then()
	a.Repeat(swap, drop, exitt)
	dotid := a.Colon(".ID", count, dolit, 0x1f, and, typs, space, exitt)
	a.Colon("WORDS", cr, cntxt, dolit, 0, temp, store)
	a.Begin(at, qdup)
	a.While(dup, space, dotid, cellm, temp, at, dolit, 0xa, less)
	a.If(dolit, 1, temp, pstor)
	a.Else(cr, dolit, 0, temp, store)
	a.Then()
	a.Repeat(exitt)
	a.Colon("FORGET", token, nameq, qdup)
	a.If(cellm, dup, cp, store, at, dup, cntxt, store, lastv, store, drop, exitt)
	a.Then(errorr)
	cold := a.Colon("COLD", cr)
	a.DotQ("eForth v1.0")
	a.Label(cr, quit)

	// Structure compiler.

	ithen := a.Immed("THEN", here, swap, store, exitt)
	a.Immed("FOR", compi, tor, here, exitt)
	a.Immed("BEGIN", here, exitt)
	a.Immed("NEXT", compi, donxt, comma, exitt)
	a.Immed("UNTIL", compi, qbran, comma, exitt)
	iagain := a.Immed("AGAIN", compi, bran, comma, exitt)
	iif := a.Immed("IF", compi, qbran, here, dolit, 0, comma, exitt)
	iahead := a.Immed("AHEAD", compi, bran, here, dolit, 0, comma, exitt)
	a.Immed("REPEAT", iagain, ithen, exitt)
	a.Immed("AFT", drop, iahead, here, swap, exitt)
	a.Immed("ELSE", iahead, swap, ithen, exitt)
	a.Immed("WHEN", iif, over, exitt)
	a.Immed("WHILE", iif, swap, exitt)
	a.Immed(`ABORT"`, dolit, aborq, here, store, strcq, exitt)
	a.Immed(`$"`, dolit, strqp, here, store, strcq, exitt)
	a.Immed(`."`, dolit, dotqp, here, store, strcq, exitt)
	codew := a.Colon("CODE", token, sname, overt, exitt)
	creat := a.Colon("CREATE", codew, dolit, vm.Cell(vm.OpNext)<<8|vm.Cell(vm.OpDoVar), comma, exitt)
	a.Colon("VARIABLE", creat, dolit, 0, comma, exitt)
	a.Colon("CONSTANT", codew, dolit, vm.Cell(vm.OpNext)<<8|vm.Cell(vm.OpDoCon), comma, comma, exitt)
	a.Immed(".(", dolit, 0x29, parse, typs, exitt)
	a.Immed("\\", dolit, 0xa, wordd, drop, exitt)
	a.Immed("(", dolit, 0x29, parse, ddrop, exitt)
	a.Colon("COMPILE-ONLY", dolit, CompileOnly, lastv, at, pstor, exitt)
	a.Colon("IMMEDIATE", dolit, Immediate, lastv, at, pstor, exitt)

	endd := a.Here()
	lastn := a.Last() // name field of IMMEDIATE

	// Boot vector: the DOLIST at address 0 enters COLD (cold start has
	// WP = 4, so IP lands on the cell holding COLD's CFA).
	a.Org(BootAddr)
	a.Label(vm.Cell(vm.OpDoList), cold)

	// Initial user area: 'TIB BASE CONTEXT CP LAST 'EVAL 'ABORT tmp.
	a.Org(UvarAddr)
	a.Label(TibAddr, 10, lastn, vm.Cell(endd), lastn, inter, quit, 0)

	if err := a.Err(); err != nil {
		return nil, errors.Wrap(err, "kernel bootstrap failed")
	}
	return &Kernel{
		Cold:      cold,
		Quit:      quit,
		Eval:      eval,
		Interpret: inter,
		Compile:   scomp,
		Abort:     abort,
		Context:   lastn,
		Here:      endd,
	}, nil
}
