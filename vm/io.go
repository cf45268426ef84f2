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
	"io"

	"github.com/pkg/errors"
)

// byteReaderWrapper wraps a plain io.Reader into an io.ByteReader.
type byteReaderWrapper struct {
	io.Reader
}

func (r *byteReaderWrapper) ReadByte() (byte, error) {
	var b [1]byte
	for {
		n, err := r.Reader.Read(b[:])
		if n > 0 {
			return b[0], nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Close forwards to the wrapped reader if it implements it.
func (r *byteReaderWrapper) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func newByteReader(r io.Reader) io.ByteReader {
	switch br := r.(type) {
	case nil:
		return nil
	case io.ByteReader:
		return br
	default:
		return &byteReaderWrapper{r}
	}
}

type multiByteReader struct {
	readers []io.ByteReader
}

func (mr *multiByteReader) ReadByte() (byte, error) {
	for len(mr.readers) > 0 {
		b, err := mr.readers[0].ReadByte()
		if err == nil {
			return b, nil
		}
		if err != io.EOF {
			return 0, err
		}
		// discard the reader and optionally close it
		if cl, ok := mr.readers[0].(io.Closer); ok {
			cl.Close()
		}
		mr.readers = mr.readers[1:]
	}
	return 0, io.EOF
}

func (mr *multiByteReader) pushReader(r io.Reader) {
	mr.readers = append([]io.ByteReader{newByteReader(r)}, mr.readers...)
}

// PushInput sets r as the current input for the VM. When this reader reaches
// EOF, the previously pushed reader takes over; when the last one runs dry,
// ?RX reports end of input and Run exits with io.EOF.
func (i *Instance) PushInput(r io.Reader) {
	switch in := i.input.(type) {
	case nil:
		i.input = newByteReader(r)
	case *multiByteReader:
		in.pushReader(r)
	default:
		mr := &multiByteReader{readers: []io.ByteReader{in}}
		mr.pushReader(r)
		i.input = mr
	}
}

func (i *Instance) readByte() (byte, error) {
	if i.input == nil {
		return 0, io.EOF
	}
	return i.input.ReadByte()
}

func (i *Instance) writeByte(c byte) error {
	if i.output == nil {
		return nil
	}
	_, err := i.output.Write([]byte{c})
	return errors.Wrap(err, "output")
}

// flush pushes buffered output to the terminal before the VM blocks reading.
func (i *Instance) flush() {
	if f, ok := i.output.(interface{ Flush() error }); ok {
		f.Flush()
	}
}
