// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package meta

import (
	"context"

	"github.com/tfctl/stepctl/internal/cacheutil"
	"github.com/tfctl/stepctl/internal/config"
)

// Meta contains runtime metadata shared by commands: CLI arguments, loaded
// configuration, context, the download cache and the starting working
// directory.
type Meta struct {
	Args        []string
	Config      config.Type
	Context     context.Context
	Cache       cacheutil.Store
	StartingDir string
}
