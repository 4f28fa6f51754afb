// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/tfctl/stepctl/internal/step"
)

// DiffHeaders renders an ascii delta between two file headers. FilePath is
// ignored since it always differs. modified is false when the headers carry
// the same metadata; text is empty in that case.
func DiffHeaders(first, second *step.Header, coloring bool) (text string, modified bool, err error) {
	left, err := headerJSON(first)
	if err != nil {
		return "", false, err
	}
	right, err := headerJSON(second)
	if err != nil {
		return "", false, err
	}

	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return "", false, fmt.Errorf("failed to compare headers: %w", err)
	}

	if !delta.Modified() {
		log.Debugf("headers are identical")
		return "", false, nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(left, &jdoc); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal header: %w", err)
	}

	f := formatter.NewAsciiFormatter(jdoc, formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       coloring,
	})
	text, err = f.Format(delta)
	if err != nil {
		return "", false, err
	}

	return text, true, nil
}

func headerJSON(h *step.Header) ([]byte, error) {
	var c step.Header
	if h != nil {
		c = *h
	}
	c.FilePath = ""
	b, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}
	return b, nil
}
