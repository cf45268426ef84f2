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

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/db47h/eforth/asm"
	"github.com/db47h/eforth/config"
	"github.com/db47h/eforth/lang/forth"
	"github.com/db47h/eforth/vm"
	"github.com/pkg/errors"
)

type fileList []string

func (f *fileList) String() string     { return "" }
func (f *fileList) Set(s string) error { *f = append(*f, s); return nil }
func (f *fileList) Get() interface{}   { return *f }

var (
	debug bool
	dump  bool
)

func setupIO(raw bool) (rawtty bool, tearDown func()) {
	if !raw {
		return false, nil
	}
	tearDown, err := setRawIO()
	if err != nil {
		return false, nil
	}
	return true, tearDown
}

func atExit(i *vm.Instance, err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "\n%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\n%+v\n", err)
	if i != nil {
		fmt.Fprintf(os.Stderr, "PC: %v, IP: %v, Stack: %v, Return: %v\n", i.PC, i.IP, i.Data(), i.Address())
	}
	os.Exit(1)
}

func main() {
	var err error
	var i *vm.Instance

	var withFiles fileList

	cfgPath := flag.String("config", "", "read configuration from `filename`")
	imgName := flag.String("image", "", "boot memory image from file `filename` instead of assembling the kernel")
	size := flag.Int("size", 0, "memory image size in bytes")
	outName := flag.String("o", "", "`filename` to use when saving the memory image on exit")
	full := flag.Bool("noshrink", false, "when saving, don't shrink the memory image to the dictionary size")
	flag.Var(&withFiles, "with", "add `filename` to the input list (can be specified multiple times)")
	noRaw := flag.Bool("noraw", false, "disable raw terminal IO")
	line := flag.Bool("line", false, "line-edited console input with history (implies -noraw)")
	flag.BoolVar(&dump, "dump", false, "dump VM state and word list upon exit")
	flag.BoolVar(&debug, "debug", false, "enable debug diagnostics")
	execStats := flag.Bool("stats", false, "print performance statistics upon exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		atExit(nil, err)
	}
	// flags win over the configuration file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "image":
			cfg.Memory.Image = *imgName
		case "size":
			cfg.Memory.Size = *size
		case "noraw":
			cfg.Terminal.Raw = !*noRaw
		case "line":
			cfg.Terminal.Line = *line
		}
	})
	if cfg.Terminal.Line {
		cfg.Terminal.Raw = false
	}

	stdout := bufio.NewWriter(os.Stdout)

	// flush output, dump state, catch and log errors
	defer func() {
		stdout.Flush()
		if dump && i != nil {
			forth.DumpVM(i, os.Stdout)
		}
		atExit(i, err)
	}()

	var mem vm.Image
	if cfg.Memory.Image != "" {
		mem, _, err = vm.Load(cfg.Memory.Image, cfg.Memory.Size)
		if err != nil {
			return
		}
	} else {
		mem = vm.NewImage(cfg.Memory.Size)
		if _, err = asm.Bootstrap(mem); err != nil {
			return
		}
	}

	rawtty, ioTearDownFn := setupIO(cfg.Terminal.Raw && !cfg.Terminal.Line)
	if ioTearDownFn != nil {
		defer ioTearDownFn()
	}

	opts := []vm.Option{
		vm.DataSize(cfg.Stacks.Data),
		vm.ReturnSize(cfg.Stacks.Return),
		vm.Output(stdout),
	}
	switch {
	case cfg.Terminal.Line:
		lr := newLineReader()
		defer lr.Close()
		opts = append(opts, vm.Input(lr))
	case rawtty:
		opts = append(opts, vm.Input(os.Stdin))
	default:
		opts = append(opts, vm.Input(bufio.NewReader(os.Stdin)))
	}

	i, err = vm.New(mem, opts...)
	if err != nil {
		return
	}

	// startup files load in order of appearance on the command line, so
	// push them in reverse
	files := append(append(fileList{}, cfg.Startup.Files...), withFiles...)
	for n := len(files) - 1; n >= 0; n-- {
		var f *os.File
		f, err = os.Open(files[n])
		if err != nil {
			err = errors.Wrap(err, "startup file")
			return
		}
		defer f.Close()
		i.PushInput(bufio.NewReader(f))
	}

	start := time.Now()
	if err = i.Run(); errors.Cause(err) == io.EOF {
		err = nil
	}
	if *execStats {
		delta := time.Since(start)
		fmt.Fprintf(os.Stderr, "Executed %d instructions in %v (%.3f MHz).\n", i.InstructionCount(), delta,
			float64(i.InstructionCount())/float64(delta)*float64(time.Second)/1e6)
	}
	if err == nil && *outName != "" {
		sz := forth.Here(mem)
		if *full {
			sz = len(mem)
		}
		err = vm.Save(*outName, mem, sz)
	}
}
