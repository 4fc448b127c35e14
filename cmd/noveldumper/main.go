// Copyright 2024 Josh Deprez
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

//go:build example
// +build example

// The noveldumper binary compiles a script and prints its blocks, labels,
// and clear marks.
//
// Quick usage from the root of the repo:
//
//	go run -tags example ./cmd/noveldumper testdata/go.reg
//
// The "example" build tag is used to prevent this being installed to ~/go/bin
// if you use the go get command.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/DrJosh9000/novel"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: noveldumper SCRIPT_FILE")
		os.Exit(1)
	}
	doc, err := novel.LoadScriptFile(os.Args[1])
	if err != nil {
		log.Fatalf("Couldn't compile script: %v", err)
	}
	fmt.Print(novel.FormatDocument(doc))
}
