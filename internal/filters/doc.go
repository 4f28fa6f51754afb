// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

// Package filters selects rows of tree, diff and revision output.
//
// A filter is key, optional operator and target. Operators, each negatable
// with a leading '!':
//
//   - = : exact match
//   - ~ : case-insensitive match
//   - ^ : prefix match
//   - < : less than (numeric when the value is a number)
//   - > : greater than (numeric when the value is a number)
//   - @ : contains (substring, array element or map key)
//   - / : regular expression match
//
// A bare key keeps rows where the value is present and non-zero.
//
// Examples:
//
//   - "class!=both" : everything that changed
//   - "name^Bolt" : parts whose name starts with Bolt
//   - "depth<2" : the top two levels
//   - "signature/Arm\[" : anything below an Arm
//   - "derived=false" : occurrences whose label was typed by a user
//
// Keys are resolved against the output keys of the attrs in play, then the
// attrs aliases, then used as a row path. Filters are separated by commas or
// by STEPCTL_FILTER_DELIM.
package filters
