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
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DirSource reads scripts named <name>.reg from a directory.
type DirSource struct {
	Dir string
}

// ReadScript reads the script with the given name.
func (s DirSource) ReadScript(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(s.Dir, name+ScriptExt))
	if err != nil {
		return "", fmt.Errorf("%w: reading script %q: %w", ErrFile, name, err)
	}
	return string(b), nil
}

// FSSource reads scripts named <name>.reg from a directory within an
// fs.FS, such as an embed.FS.
type FSSource struct {
	FS  fs.FS
	Dir string
}

// ReadScript reads the script with the given name.
func (s FSSource) ReadScript(name string) (string, error) {
	b, err := fs.ReadFile(s.FS, path.Join(s.Dir, name+ScriptExt))
	if err != nil {
		return "", fmt.Errorf("%w: reading script %q: %w", ErrFile, name, err)
	}
	return string(b), nil
}

// MapSource serves scripts from memory. It is useful for tests and tools.
type MapSource map[string]string

// ReadScript returns the script with the given name.
func (s MapSource) ReadScript(name string) (string, error) {
	text, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%w: no script %q: %w", ErrFile, name, fs.ErrNotExist)
	}
	return text, nil
}

// LoadDocument reads and compiles a script from src.
func LoadDocument(src ScriptSource, name string) (*Document, error) {
	text, err := src.ReadScript(name)
	if err != nil {
		return nil, err
	}
	return Compile(name, text)
}

// LoadScriptFile is a convenient function for compiling a script given a
// file path. The document is named after the file, without its extension.
func LoadScriptFile(scriptPath string) (*Document, error) {
	b, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading script file: %w", ErrFile, err)
	}
	name := strings.TrimSuffix(filepath.Base(scriptPath), filepath.Ext(scriptPath))
	return Compile(name, string(b))
}
