/*
Package config manages configuration parsing and validation for lasr.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +-----------+-----------+
	      |                       |
	+-----+-----+           +-----+----+
	|   TOML    |           |   YAML   |
	|  Parser   |           |  Parser  |
	+-----------+           +----------+

🎯 Purpose:
- Loads lasr.toml (or lasr.yaml) from the XDG config directory
- Validates thread counts, size caps, and key bindings at startup
- Resolves the effective keymap: defaults overlaid with [keys] entries
- Carries the preview theme for the UI

🔄 Flow:
1. Reads configuration from file (missing file means defaults)
2. Parses format-specific syntax via the parser registry
3. Validates configuration values; a malformed file is fatal
4. Hands the validated config to cmd/lasr for wiring

📝 Design Philosophy:
Configuration is resolved exactly once, at startup. Nothing in the search
core reads files or environment variables; it receives plain values. When
the same chord is bound twice, the last write wins: config entries replace
default bindings.
*/
package config
