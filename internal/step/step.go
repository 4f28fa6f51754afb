// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package step

import "fmt"

// Part is one product definition. ID is local to the file it came from and
// must never be used to align parts across files.
type Part struct {
	ID                 int    `json:"id" yaml:"id" validate:"gt=0"`
	Type               string `json:"type" yaml:"type"`
	Name               string `json:"name" yaml:"name" validate:"max=1024"`
	RepresentationType string `json:"representation_type" yaml:"representation_type"`
}

// Label renders the part the way it is shown in diagnostics, e.g.
// "PD#12 'Spider'".
func (p Part) Label() string {
	return fmt.Sprintf("%s#%d '%s'", p.Type, p.ID, p.Name)
}

// Relation is an assembly-usage occurrence (NAUO): ChildID is used as a
// component of ParentID. Label is the composite relation id exported by the
// CAD application (e.g. "Spider1:1").
type Relation struct {
	Label    string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	ParentID int    `json:"relating_id" yaml:"relating_id" validate:"gt=0"`
	ChildID  int    `json:"related_id" yaml:"related_id" validate:"gt=0"`
	RawID    int    `json:"step_id" yaml:"step_id" validate:"gte=0"`
	Type     string `json:"type" yaml:"type"`
}

// Header carries the HEADER section of the exchange file.
type Header struct {
	FilePath string `json:"file_path,omitempty" yaml:"file_path,omitempty"`

	// FILE_DESCRIPTION
	Description         string `json:"description" yaml:"description"`
	ImplementationLevel string `json:"implementation_level" yaml:"implementation_level"`

	// FILE_NAME
	Name                string `json:"name" yaml:"name"`
	TimeStamp           string `json:"time_stamp" yaml:"time_stamp"`
	Author              string `json:"author" yaml:"author"`
	Organization        string `json:"organization" yaml:"organization"`
	PreprocessorVersion string `json:"preprocessor_version" yaml:"preprocessor_version"`
	OriginatingSystem   string `json:"originating_system" yaml:"originating_system"`
	Authorization       string `json:"authorisation" yaml:"authorisation"`

	// FILE_SCHEMA
	Schema string `json:"file_schema" yaml:"file_schema"`
}

// File is everything the reader extracted from one exchange file.
type File struct {
	Header    *Header    `json:"header,omitempty" yaml:"header,omitempty"`
	Parts     []Part     `json:"parts" yaml:"parts" validate:"dive"`
	Relations []Relation `json:"relations" yaml:"relations" validate:"dive"`
}

// Empty reports whether f carries no parts. A nil File is empty.
func (f *File) Empty() bool {
	return f == nil || len(f.Parts) == 0
}
