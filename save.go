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
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
)

// SaveRecord is one save slot.
type SaveRecord struct {
	Script     string `toml:"script"`
	Index      int    `toml:"block_index"`
	Explain    string `toml:"explain"`
	Background string `toml:"image_path"`
}

// Empty reports whether the slot holds no save.
func (r SaveRecord) Empty() bool { return r.Script == "" }

// SaveStore keeps save slots as TOML files in a directory, one file per
// slot.
type SaveStore struct {
	Dir   string
	Slots int
}

// NewSaveStore returns a store in dir with the usual number of slots.
func NewSaveStore(dir string) *SaveStore {
	return &SaveStore{Dir: dir, Slots: defaultSaveSlots}
}

func (s *SaveStore) path(slot int) string {
	return filepath.Join(s.Dir, strconv.Itoa(slot)+".toml")
}

func (s *SaveStore) check(slot int) error {
	if slot < 0 || slot >= s.Slots {
		return fmt.Errorf("%w: save slot %d out of range [0, %d)", ErrUI, slot, s.Slots)
	}
	return nil
}

// Load reads one slot. An unused slot returns an empty record.
func (s *SaveStore) Load(slot int) (SaveRecord, error) {
	if err := s.check(slot); err != nil {
		return SaveRecord{}, err
	}
	var r SaveRecord
	if err := decodeTOMLFile(s.path(slot), &r); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SaveRecord{}, nil
		}
		return SaveRecord{}, err
	}
	return r, nil
}

// Store writes one slot.
func (s *SaveStore) Store(slot int, r SaveRecord) error {
	if err := s.check(slot); err != nil {
		return err
	}
	return encodeTOMLFile(s.path(slot), r)
}

// List reads every slot. Unreadable slots are returned empty along with
// the first error encountered.
func (s *SaveStore) List() ([]SaveRecord, error) {
	recs := make([]SaveRecord, s.Slots)
	var first error
	for i := range recs {
		r, err := s.Load(i)
		if err != nil && first == nil {
			first = err
		}
		recs[i] = r
	}
	return recs, first
}
