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

// The eforth command runs an interactive eForth system on the terminal.
//
// With no arguments it assembles the kernel into a fresh 64KB memory image
// and enters the interpreter. Settings can also come from an eforth.toml
// file in the current directory or in the user configuration directory;
// command line flags take precedence.
//
// Usage:
//
//	-config filename
//		read configuration from filename
//	-debug
//		enable debug diagnostics
//	-dump
//		dump VM state and word list upon exit
//	-image filename
//		boot memory image from file filename instead of assembling the kernel
//	-line
//		line-edited console input with history (implies -noraw)
//	-noraw
//		disable raw terminal IO
//	-noshrink
//		when saving, don't shrink the memory image to the dictionary size
//	-o filename
//		filename to use when saving the memory image on exit
//	-size int
//		memory image size in bytes
//	-stats
//		print performance statistics upon exit
//	-with filename
//		add filename to the input list (can be specified multiple times)
//
// -image: a memory image previously saved with -o boots noticeably faster
// than re-assembling the kernel and keeps any words compiled during the
// session it was saved from.
//
// -with: the named files are fed to the interpreter in order of appearance
// on the command line, before the console. Files listed in the startup
// section of the configuration file load first.
//
// -noraw: upon startup, eforth switches the terminal to raw mode so that the
// kernel's own line editing (backspace handling in ^H and kTAP) works. This
// flag disables that; input is then line buffered by the terminal driver.
//
// -line: read console input with a line editor with history instead of the
// kernel's ACCEPT echo. Startup files are unaffected.
package main
