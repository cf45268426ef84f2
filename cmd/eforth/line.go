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
	"io"

	"github.com/peterh/liner"
)

// lineReader adapts a liner.State to the io.Reader the VM consumes: each
// Read drains the current line, prompting for a new one (with history and
// editing) when empty. CTRL-C and CTRL-D read as end of input, which the VM
// treats as a clean exit.
type lineReader struct {
	line *liner.State
	buf  []byte
}

func newLineReader() *lineReader {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &lineReader{line: l}
}

func (r *lineReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		s, err := r.line.Prompt("")
		if err != nil {
			if err == liner.ErrPromptAborted {
				err = io.EOF
			}
			return 0, err
		}
		if s != "" {
			r.line.AppendHistory(s)
		}
		// the kernel's ACCEPT stops at CR
		r.buf = append([]byte(s), '\r')
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *lineReader) Close() error {
	return r.line.Close()
}
