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

package novel

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestScriptSources(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.reg"), []byte("X“1”"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	sources := map[string]ScriptSource{
		"DirSource": DirSource{Dir: dir},
		"FSSource":  FSSource{FS: fstest.MapFS{"scripts/a.reg": {Data: []byte("X“1”")}}, Dir: "scripts"},
		"MapSource": MapSource{"a": "X“1”"},
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			got, err := src.ReadScript("a")
			if err != nil {
				t.Fatalf("ReadScript(a) = %v", err)
			}
			if want := "X“1”"; got != want {
				t.Errorf("ReadScript(a) = %q, want %q", got, want)
			}

			_, err = src.ReadScript("b")
			if !errors.Is(err, ErrFile) {
				t.Errorf("ReadScript(b) = %v, want ErrFile", err)
			}
			if !errors.Is(err, fs.ErrNotExist) {
				t.Errorf("ReadScript(b) = %v, want fs.ErrNotExist", err)
			}
		})
	}
}

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument(MapSource{"a": "X“1”\n\nX“2”"}, "a")
	if err != nil {
		t.Fatalf("LoadDocument(a) = %v", err)
	}
	if doc.Name != "a" || doc.Len() != 2 {
		t.Errorf("LoadDocument(a) = %q with %d blocks, want %q with 2", doc.Name, doc.Len(), "a")
	}
	if _, err := LoadDocument(MapSource{"a": "nonsense"}, "a"); !errors.Is(err, ErrParse) {
		t.Errorf("LoadDocument(nonsense) = %v, want ErrParse", err)
	}
}

func TestLoadScriptFile(t *testing.T) {
	doc, err := LoadScriptFile("testdata/Example.reg")
	if err != nil {
		t.Fatalf("LoadScriptFile(Example.reg) = %v", err)
	}
	if got, want := doc.Name, "Example"; got != want {
		t.Errorf("doc.Name = %q, want %q", got, want)
	}
	if _, ok := doc.LabelIndex("end"); !ok {
		t.Error("doc.LabelIndex(end) ok = false, want true")
	}
	if _, err := LoadScriptFile("testdata/missing.reg"); !errors.Is(err, ErrFile) {
		t.Errorf("LoadScriptFile(missing) = %v, want ErrFile", err)
	}
}
