// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tfctl/stepctl/internal/differ"
	"github.com/tfctl/stepctl/internal/hlr"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// GlobalFlagsValidator checks flag combinations that no single validator can.
func GlobalFlagsValidator(ctx context.Context, c *cli.Command) error {
	if c.Bool("summary") && c.String("output") == "tree" {
		return fmt.Errorf("--summary can't be rendered as a tree")
	}
	return nil
}

var validOutputFlagValues = []string{"text", "json", "raw", "yaml", "tree"}

func OutputValidator(value any) error {
	s, _ := value.(string)
	if !slices.Contains(validOutputFlagValues, s) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

func PaddingValidator(value any) error {
	n, ok := value.(int)
	if !ok || n < 0 || n > 16 {
		return fmt.Errorf("must be between 0 and 16")
	}
	return nil
}

func FieldsValidator(value any) error {
	s, _ := value.(string)
	_, err := hlr.KeyFuncByName(s)
	return err
}

// OnlyValidator accepts a comma separated list of classifications.
func OnlyValidator(value any) error {
	s, _ := value.(string)
	_, err := parseKinds(s)
	return err
}

// parseKinds parses an --only value. Empty yields nil.
func parseKinds(s string) ([]differ.Kind, error) {
	var kinds []differ.Kind
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := differ.ParseKind(part)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}
