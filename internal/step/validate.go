// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package step

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the record-level constraints of f. Structural problems such
// as dangling references or cycles are not validation errors; the tree builder
// reports those as anomalies.
func (f *File) Validate() error {
	if f == nil {
		return errors.New("file cannot be nil")
	}

	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, formatFieldError(e))
	}
	return errors.Join(errs...)
}

// formatFieldError turns a validator field error into a short message naming
// the offending record, e.g. "Parts[3].ID: must be greater than 0".
func formatFieldError(e validator.FieldError) error {
	field := strings.TrimPrefix(e.Namespace(), "File.")

	switch e.Tag() {
	case "required":
		return fmt.Errorf("%s: field is required", field)
	case "gt":
		return fmt.Errorf("%s: must be greater than %s, got %v", field, e.Param(), e.Value())
	case "gte":
		return fmt.Errorf("%s: must be at least %s, got %v", field, e.Param(), e.Value())
	case "max":
		return fmt.Errorf("%s: must not exceed %s", field, e.Param())
	default:
		return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
	}
}
