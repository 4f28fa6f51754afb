// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/tfctl/stepctl/internal/step"
)

// LoadPair loads both sources concurrently. The first load to fail cancels
// the other and its error is returned.
func LoadPair(ctx context.Context, first, second Source) (*step.File, *step.File, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
		files    [2]*step.File
	)

	for i, src := range []Source{first, second} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := src.Load(ctx)
			if err != nil {
				once.Do(func() {
					firstErr = fmt.Errorf("failed to load %s: %w", src, err)
					cancel()
				})
				return
			}
			files[i] = f
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}
	return files[0], files[1], nil
}
