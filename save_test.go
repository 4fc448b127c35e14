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
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSaveStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "save")
	s := NewSaveStore(dir)

	got, err := s.Load(3)
	if err != nil {
		t.Fatalf("Load(3) on a new store = %v", err)
	}
	if !got.Empty() {
		t.Errorf("Load(3) = %+v, want empty", got)
	}

	rec := SaveRecord{Script: "start", Index: 7, Explain: "Hello...", Background: "bg/room.png"}
	if err := s.Store(3, rec); err != nil {
		t.Fatalf("Store(3) = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "3.toml")); err != nil {
		t.Errorf("slot file: %v", err)
	}
	got, err = s.Load(3)
	if err != nil {
		t.Fatalf("Load(3) = %v", err)
	}
	if diff := cmp.Diff(got, rec); diff != "" {
		t.Errorf("Load(3) diff (-got +want):\n%s", diff)
	}

	recs, err := s.List()
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	want := make([]SaveRecord, defaultSaveSlots)
	want[3] = rec
	if diff := cmp.Diff(recs, want); diff != "" {
		t.Errorf("List() diff (-got +want):\n%s", diff)
	}
}

func TestSaveStoreOutOfRange(t *testing.T) {
	s := NewSaveStore(t.TempDir())
	for _, slot := range []int{-1, defaultSaveSlots} {
		if _, err := s.Load(slot); !errors.Is(err, ErrUI) {
			t.Errorf("Load(%d) = %v, want ErrUI", slot, err)
		}
		if err := s.Store(slot, SaveRecord{Script: "x"}); !errors.Is(err, ErrUI) {
			t.Errorf("Store(%d) = %v, want ErrUI", slot, err)
		}
	}
}

func TestSaveStoreCorruptSlot(t *testing.T) {
	dir := t.TempDir()
	s := NewSaveStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "1.toml"), []byte("script = \n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := s.Load(1); !errors.Is(err, ErrConfig) {
		t.Errorf("Load(1) = %v, want ErrConfig", err)
	}
	recs, err := s.List()
	if !errors.Is(err, ErrConfig) {
		t.Errorf("List() error = %v, want ErrConfig", err)
	}
	if len(recs) != defaultSaveSlots {
		t.Errorf("len(List()) = %d, want %d", len(recs), defaultSaveSlots)
	}
}
