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
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ini.toml")
	writeFile(t, path, `
[initialize]
script_path = "scripts"
background_path = "bg"
voice_path = "voice"
bgm_path = "bgm"
figure_path = "fg"
save_path = "save"

[character]
list = ["alice", "bob"]

[volume]
main = 80.0
bgm = 50.0
voice = 100.0
`)
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig(%q) = %v", path, err)
	}
	want := &Config{
		Initialize: Paths{
			Script:     "scripts",
			Background: "bg",
			Voice:      "voice",
			Bgm:        "bgm",
			Figure:     "fg",
			Save:       "save",
		},
		Character: CharacterList{List: []string{"alice", "bob"}},
		Volume:    VolumeSettings{Main: 80, Bgm: 50, Voice: 100},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("LoadConfig() diff (-got +want):\n%s", diff)
	}

	paths := []struct{ got, want string }{
		{got.ScriptPath("start"), filepath.Join("scripts", "start.reg")},
		{got.BackgroundPath("room"), filepath.Join("bg", "room.png")},
		{got.BgmPath("theme"), filepath.Join("bgm", "theme.ogg")},
		{got.VoicePath("alice", "hi"), filepath.Join("voice", "alice", "hi.ogg")},
		{got.FigurePath("alice", "near", "smile"), filepath.Join("fg", "alice", "near", "smile.png")},
		{got.UserConfigPath(), filepath.Join("save", "user.toml")},
	}
	for _, p := range paths {
		if p.got != p.want {
			t.Errorf("path = %q, want %q", p.got, p.want)
		}
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	noScript := filepath.Join(dir, "noscript.toml")
	writeFile(t, noScript, "[initialize]\nbackground_path = \"bg\"\n")
	malformed := filepath.Join(dir, "malformed.toml")
	writeFile(t, malformed, "[initialize\n")

	tests := []struct {
		path string
		want error
	}{
		{noScript, ErrConfig},
		{malformed, ErrConfig},
		{filepath.Join(dir, "missing.toml"), ErrFile},
	}
	for _, test := range tests {
		c, err := LoadConfig(test.path)
		if !errors.Is(err, test.want) {
			t.Errorf("LoadConfig(%q) error = %v, want %v", test.path, err, test.want)
		}
		if c != nil {
			t.Errorf("LoadConfig(%q) = %v, want nil", test.path, c)
		}
	}
}

func TestUserConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save", UserConfigFile)

	u, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig(missing) = %v", err)
	}
	if diff := cmp.Diff(u, DefaultUserConfig()); diff != "" {
		t.Errorf("LoadUserConfig(missing) diff (-got +want):\n%s", diff)
	}

	s := u.Settings()
	wantSettings := Settings{
		MainVolume:   100,
		BgmVolume:    100,
		VoiceVolume:  100,
		TextSpeed:    50 * time.Millisecond,
		AutoDelay:    time.Second,
		WaitForVoice: true,
	}
	if diff := cmp.Diff(s, wantSettings); diff != "" {
		t.Errorf("Settings() diff (-got +want):\n%s", diff)
	}

	s.BgmVolume = 40
	s.AutoDelay = 2500 * time.Millisecond
	s.WaitForVoice = false
	u.Update(s)
	if err := u.Save(path); err != nil {
		t.Fatalf("Save(%q) = %v", path, err)
	}

	u2, err := LoadUserConfig(path)
	if err != nil {
		t.Fatalf("LoadUserConfig(%q) = %v", path, err)
	}
	if diff := cmp.Diff(u2.Settings(), s); diff != "" {
		t.Errorf("reloaded Settings() diff (-got +want):\n%s", diff)
	}

	writeFile(t, path, "[auto\n")
	if _, err := LoadUserConfig(path); !errors.Is(err, ErrConfig) {
		t.Errorf("LoadUserConfig(malformed) = %v, want ErrConfig", err)
	}
}

func TestVoiceAndFigureTables(t *testing.T) {
	dir := t.TempDir()
	c := &Config{
		Initialize: Paths{
			Voice:  filepath.Join(dir, "voice"),
			Figure: filepath.Join(dir, "fg"),
		},
		Character: CharacterList{List: []string{"alice", "nobody"}},
	}
	writeFile(t, filepath.Join(dir, "voice", "alice", VoiceLengthFile), `
[[cast]]
name = "hello"
length = 2.5

[[cast]]
name = "bye"
length = 1.0
`)
	writeFile(t, filepath.Join(dir, "fg", "alice", FigureBodyFile), `
[[cast]]
name = "uniform"
rate = 0.8
`)
	writeFile(t, filepath.Join(dir, "fg", "alice", FigureFaceFile), `
[[cast]]
name = "smile"
x = 10.0
y = 20.0
`)

	voices, err := LoadVoiceTable(c)
	if err != nil {
		t.Fatalf("LoadVoiceTable() = %v", err)
	}
	wantVoices := VoiceTable{
		"alice": {"hello": 2500 * time.Millisecond, "bye": time.Second},
	}
	if diff := cmp.Diff(voices, wantVoices); diff != "" {
		t.Errorf("LoadVoiceTable() diff (-got +want):\n%s", diff)
	}
	if _, ok := voices.Length("nobody", "hello"); ok {
		t.Error("voices.Length(nobody, hello) ok = true, want false")
	}

	figures, err := LoadFigureTable(c)
	if err != nil {
		t.Fatalf("LoadFigureTable() = %v", err)
	}
	st := FigureState{Character: "alice", Distance: "near", Body: "uniform", Face: "smile", Slot: "1"}
	got := figures.Image(c, st)
	want := FigureImage{
		State:    st,
		BodyPath: filepath.Join(dir, "fg", "alice", "near", "uniform.png"),
		FacePath: filepath.Join(dir, "fg", "alice", "near", "smile.png"),
		FaceX:    10,
		FaceY:    20,
		Scale:    0.8,
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Image() diff (-got +want):\n%s", diff)
	}

	var none *FigureTable
	if got := none.Image(c, st); got.Scale != 1 || got.FaceX != 0 {
		t.Errorf("nil table Image() = %+v, want scale 1 and no face position", got)
	}

	writeFile(t, filepath.Join(dir, "voice", "alice", VoiceLengthFile), "[[cast]\n")
	if _, err := LoadVoiceTable(c); !errors.Is(err, ErrConfig) {
		t.Errorf("LoadVoiceTable(malformed) = %v, want ErrConfig", err)
	}
}
