// Copyright 2025 Ryan Roden-Corrent
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

package config

// 🎨 Style is one renderable text style. Colors are terminal color names,
// ANSI indexes ("6"), or hex ("#00ff00"); interpretation is the UI's job.
type Style struct {
	Fg         string `toml:"fg,omitempty" yaml:"fg,omitempty"`
	Bg         string `toml:"bg,omitempty" yaml:"bg,omitempty"`
	Bold       bool   `toml:"bold,omitempty" yaml:"bold,omitempty"`
	CrossedOut bool   `toml:"crossed_out,omitempty" yaml:"crossed_out,omitempty"`
}

// 🎨 Theme styles the match preview: base text, matched spans, and their
// proposed replacements.
type Theme struct {
	Base    Style `toml:"base" yaml:"base"`
	Find    Style `toml:"find" yaml:"find"`
	Replace Style `toml:"replace" yaml:"replace"`
}

// 🏭 DefaultTheme marks matches struck-through red and replacements bold
// green.
func DefaultTheme() Theme {
	return Theme{
		Base:    Style{Fg: "white"},
		Find:    Style{Fg: "red", CrossedOut: true},
		Replace: Style{Fg: "green", Bold: true},
	}
}
