// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Summary counts the merged nodes per classification.
type Summary struct {
	Total      int  `json:"total" yaml:"total"`
	Both       int  `json:"both" yaml:"both"`
	FirstOnly  int  `json:"first_only" yaml:"first_only"`
	SecondOnly int  `json:"second_only" yaml:"second_only"`
	Relocated  int  `json:"relocated" yaml:"relocated"`
	CommonRoot bool `json:"common_root" yaml:"common_root"`
}

// Summarize computes the summary of a merged sequence. CommonRoot is set when
// at least one merged root is present in both trees.
func Summarize(nodes []Node) Summary {
	var s Summary
	for _, n := range nodes {
		s.Total++
		switch n.Kind() {
		case KindBoth:
			s.Both++
			if n.IsRoot() {
				s.CommonRoot = true
			}
		case KindFirstOnly:
			s.FirstOnly++
		case KindSecondOnly:
			s.SecondOnly++
		case KindSecondRelocated:
			s.Relocated++
		}
	}
	return s
}

// Identical reports whether every merged node is Both. An empty summary is
// not identical.
func (s Summary) Identical() bool {
	return s.Total > 0 && s.Both == s.Total
}

// Count returns the number of nodes of kind k.
func (s Summary) Count(k Kind) int {
	switch k {
	case KindBoth:
		return s.Both
	case KindFirstOnly:
		return s.FirstOnly
	case KindSecondOnly:
		return s.SecondOnly
	case KindSecondRelocated:
		return s.Relocated
	}
	return 0
}

func (s Summary) String() string {
	return fmt.Sprintf("%s nodes: %s both, %s first only, %s second only, %s relocated",
		humanize.Comma(int64(s.Total)),
		humanize.Comma(int64(s.Both)),
		humanize.Comma(int64(s.FirstOnly)),
		humanize.Comma(int64(s.SecondOnly)),
		humanize.Comma(int64(s.Relocated)))
}
