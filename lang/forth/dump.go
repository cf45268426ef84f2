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

package forth

import (
	"fmt"
	"io"
	"strconv"

	"github.com/db47h/eforth/internal/efi"
	"github.com/db47h/eforth/vm"
)

func dumpCells(w *efi.ErrWriter, a []vm.Cell) {
	for k, v := range a {
		if k > 0 {
			w.Write([]byte{' '})
		}
		io.WriteString(w, strconv.Itoa(int(v)))
	}
}

// DumpVM writes a human readable summary of the VM state to w: registers,
// both stacks, the dictionary pointer and the defined words.
func DumpVM(i *vm.Instance, w io.Writer) error {
	ew := efi.NewErrWriter(w)
	fmt.Fprintf(ew, "PC=%#x IP=%#x WP=%#x HERE=%#x\n", i.PC, i.IP, i.WP, Here(i.Mem))
	io.WriteString(ew, "data: ")
	dumpCells(ew, i.Data())
	io.WriteString(ew, "\nreturn: ")
	for k, v := range i.Address() {
		if k > 0 {
			ew.Write([]byte{' '})
		}
		io.WriteString(ew, strconv.Itoa(int(v)))
	}
	io.WriteString(ew, "\nwords:")
	for k, n := range Words(i.Mem) {
		if k%10 == 0 {
			io.WriteString(ew, "\n  ")
		} else {
			ew.Write([]byte{' '})
		}
		io.WriteString(ew, n)
	}
	ew.Write([]byte{'\n'})
	return ew.Err
}
