// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package config provides loading and typed accessors for stepctl's user
// configuration, a YAML document named by STEPCTL_CFG_FILE or found as
// stepctl.yaml in os.UserConfigDir:
//   - Linux: $XDG_CONFIG_HOME/stepctl.yaml or $HOME/.config/stepctl.yaml
//   - macOS: $HOME/Library/Application Support/stepctl.yaml
//   - Windows: %APPDATA%/stepctl.yaml
//
// Keys are dotted paths such as signature.fields, colors.relocated or
// dq.defaults.
package config
