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
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// File names within the configured directories.
const (
	UserConfigFile   = "user.toml"
	VoiceLengthFile  = "length.toml"
	FigureBodyFile   = "body.toml"
	FigureFaceFile   = "face.toml"
	ScriptExt        = ".reg"
	audioExt         = ".ogg"
	imageExt         = ".png"
	defaultSaveSlots = 16
)

// Config is the engine configuration, usually read from ini.toml.
type Config struct {
	Initialize Paths          `toml:"initialize"`
	Character  CharacterList  `toml:"character"`
	Volume     VolumeSettings `toml:"volume"`
}

// Paths are the asset directories.
type Paths struct {
	Script     string `toml:"script_path"`
	Background string `toml:"background_path"`
	Voice      string `toml:"voice_path"`
	Bgm        string `toml:"bgm_path"`
	Figure     string `toml:"figure_path"`
	Save       string `toml:"save_path"`
}

// CharacterList names the characters that have voice and figure tables.
type CharacterList struct {
	List []string `toml:"list"`
}

// VolumeSettings are volumes on a 0-100 scale.
type VolumeSettings struct {
	Main  float64 `toml:"main"`
	Bgm   float64 `toml:"bgm"`
	Voice float64 `toml:"voice"`
}

// LoadConfig reads an engine config file.
func LoadConfig(path string) (*Config, error) {
	c := new(Config)
	if err := decodeTOMLFile(path, c); err != nil {
		return nil, err
	}
	if c.Initialize.Script == "" {
		return nil, fmt.Errorf("%w: %s: initialize.script_path is not set", ErrConfig, path)
	}
	return c, nil
}

// ScriptPath returns the path of a script file.
func (c *Config) ScriptPath(name string) string {
	return filepath.Join(c.Initialize.Script, name+ScriptExt)
}

// BackgroundPath returns the path of a background image.
func (c *Config) BackgroundPath(name string) string {
	return filepath.Join(c.Initialize.Background, name+imageExt)
}

// BgmPath returns the path of a music track.
func (c *Config) BgmPath(name string) string {
	return filepath.Join(c.Initialize.Bgm, name+audioExt)
}

// VoicePath returns the path of a voice clip.
func (c *Config) VoicePath(character, clip string) string {
	return filepath.Join(c.Initialize.Voice, character, clip+audioExt)
}

// FigurePath returns the path of a figure body or face image.
func (c *Config) FigurePath(character, distance, part string) string {
	return filepath.Join(c.Initialize.Figure, character, distance, part+imageExt)
}

// UserConfigPath returns the path of the user settings file.
func (c *Config) UserConfigPath() string {
	return filepath.Join(c.Initialize.Save, UserConfigFile)
}

// UserConfig is the per-user settings file.
type UserConfig struct {
	Auto   AutoSettings   `toml:"auto"`
	Volume VolumeSettings `toml:"volume"`
	Text   TextSettings   `toml:"text"`
}

// AutoSettings configure auto-play.
type AutoSettings struct {
	// Delay is the base wait in seconds.
	Delay  float64 `toml:"delay"`
	IsWait bool    `toml:"is_wait"`
}

// TextSettings configure the dialogue box.
type TextSettings struct {
	// Speed is the time between reveal steps in milliseconds.
	Speed   float64 `toml:"speed"`
	Opacity float64 `toml:"opacity"`
}

// DefaultUserConfig returns the settings used when there is no user file.
func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Auto:   AutoSettings{Delay: 1, IsWait: true},
		Volume: VolumeSettings{Main: 100, Bgm: 100, Voice: 100},
		Text:   TextSettings{Speed: 50, Opacity: 80},
	}
}

// LoadUserConfig reads a user settings file. A missing file yields the
// defaults.
func LoadUserConfig(path string) (*UserConfig, error) {
	u := DefaultUserConfig()
	if err := decodeTOMLFile(path, u); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return u, nil
		}
		return nil, err
	}
	return u, nil
}

// Save writes the settings to path.
func (u *UserConfig) Save(path string) error {
	return encodeTOMLFile(path, u)
}

// Settings converts the file's values into display settings.
func (u *UserConfig) Settings() Settings {
	return Settings{
		MainVolume:   u.Volume.Main,
		BgmVolume:    u.Volume.Bgm,
		VoiceVolume:  u.Volume.Voice,
		TextSpeed:    time.Duration(u.Text.Speed * float64(time.Millisecond)),
		AutoDelay:    time.Duration(u.Auto.Delay * float64(time.Second)),
		WaitForVoice: u.Auto.IsWait,
	}
}

// Update records display settings back into the file's values.
func (u *UserConfig) Update(s Settings) {
	u.Volume = VolumeSettings{Main: s.MainVolume, Bgm: s.BgmVolume, Voice: s.VoiceVolume}
	u.Text.Speed = float64(s.TextSpeed) / float64(time.Millisecond)
	u.Auto.Delay = s.AutoDelay.Seconds()
	u.Auto.IsWait = s.WaitForVoice
}

// VoiceTable maps character and clip to the clip's length.
type VoiceTable map[string]map[string]time.Duration

// Length returns the recorded length of a clip.
func (t VoiceTable) Length(character, clip string) (time.Duration, bool) {
	d, ok := t[character][clip]
	return d, ok
}

type voiceLengths struct {
	Cast []struct {
		Name string `toml:"name"`
		// Length is in seconds.
		Length float64 `toml:"length"`
	} `toml:"cast"`
}

// LoadVoiceTable reads each character's voice length file. Characters
// without one are skipped.
func LoadVoiceTable(c *Config) (VoiceTable, error) {
	t := make(VoiceTable)
	for _, ch := range c.Character.List {
		var vl voiceLengths
		path := filepath.Join(c.Initialize.Voice, ch, VoiceLengthFile)
		if err := decodeTOMLFile(path, &vl); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		m := make(map[string]time.Duration, len(vl.Cast))
		for _, cl := range vl.Cast {
			m[cl.Name] = time.Duration(cl.Length * float64(time.Second))
		}
		t[ch] = m
	}
	return t, nil
}

// FacePosition is where a face sits on a body.
type FacePosition struct {
	X, Y float64
}

// FigureTable holds each character's body scales and face positions.
type FigureTable struct {
	Bodies map[string]map[string]float64
	Faces  map[string]map[string]FacePosition
}

type figureBodies struct {
	Cast []struct {
		Name string  `toml:"name"`
		Rate float64 `toml:"rate"`
	} `toml:"cast"`
}

type figureFaces struct {
	Cast []struct {
		Name string  `toml:"name"`
		X    float64 `toml:"x"`
		Y    float64 `toml:"y"`
	} `toml:"cast"`
}

// LoadFigureTable reads each character's body and face files. Characters
// without them are skipped.
func LoadFigureTable(c *Config) (*FigureTable, error) {
	t := &FigureTable{
		Bodies: make(map[string]map[string]float64),
		Faces:  make(map[string]map[string]FacePosition),
	}
	for _, ch := range c.Character.List {
		var fb figureBodies
		if err := decodeTOMLFile(filepath.Join(c.Initialize.Figure, ch, FigureBodyFile), &fb); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		} else {
			m := make(map[string]float64, len(fb.Cast))
			for _, b := range fb.Cast {
				m[b.Name] = b.Rate
			}
			t.Bodies[ch] = m
		}

		var ff figureFaces
		if err := decodeTOMLFile(filepath.Join(c.Initialize.Figure, ch, FigureFaceFile), &ff); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		} else {
			m := make(map[string]FacePosition, len(ff.Cast))
			for _, f := range ff.Cast {
				m[f.Name] = FacePosition{X: f.X, Y: f.Y}
			}
			t.Faces[ch] = m
		}
	}
	return t, nil
}

// Image returns the drawing details for a figure. A nil table yields
// paths only.
func (t *FigureTable) Image(c *Config, st FigureState) FigureImage {
	img := FigureImage{
		State:    st,
		BodyPath: c.FigurePath(st.Character, st.Distance, st.Body),
		FacePath: c.FigurePath(st.Character, st.Distance, st.Face),
		Scale:    1,
	}
	if t == nil {
		return img
	}
	if r, ok := t.Bodies[st.Character][st.Body]; ok {
		img.Scale = r
	}
	if p, ok := t.Faces[st.Character][st.Face]; ok {
		img.FaceX, img.FaceY = p.X, p.Y
	}
	return img
}

// decodeTOMLFile reads a TOML file into v. A missing file is ErrFile and
// wraps fs.ErrNotExist; a malformed one is ErrConfig.
func decodeTOMLFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %w", ErrFile, path, err)
	}
	if _, err := toml.Decode(string(data), v); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", ErrConfig, path, err)
	}
	return nil
}

func encodeTOMLFile(path string, v any) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("%w: encoding %s: %w", ErrConfig, path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrFile, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %w", ErrFile, path, err)
	}
	return nil
}
