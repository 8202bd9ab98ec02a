// Copyright (c) 2025 Dataio
// Licensed under the MIT License. See LICENSE file in the project root for details.

package dataio

import "dataio/cli/internal/rdata"

// File categories reported in a Summary.
const (
	CategoryArtifact   = "artifact"
	CategoryResult     = "result"
	CategoryRepository = "repository"
)

// Summary reports what an example run returned.
type Summary struct {
	Example      string          `json:"example" yaml:"example"`
	Endpoint     string          `json:"endpoint" yaml:"endpoint"`
	Project      string          `json:"project,omitempty" yaml:"project,omitempty"`
	ConsoleBytes int             `json:"console_bytes" yaml:"console_bytes"`
	Objects      []ObjectSummary `json:"objects,omitempty" yaml:"objects,omitempty"`
	Files        []FileSummary   `json:"files,omitempty" yaml:"files,omitempty"`
	Outputs      Match           `json:"outputs" yaml:"outputs"`
	Exports      []ExportSummary `json:"exports,omitempty" yaml:"exports,omitempty"`

	Console string                  `json:"-" yaml:"-"`
	Tables  map[string]*rdata.Table `json:"-" yaml:"-"`
}

// ObjectSummary describes one decoded workspace object.
type ObjectSummary struct {
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Length int    `json:"length" yaml:"length"`
}

// FileSummary describes one returned file and what happened to it.
type FileSummary struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`
	Deleted  bool   `json:"deleted,omitempty" yaml:"deleted,omitempty"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// ExportSummary records one table written to a database.
type ExportSummary struct {
	Object string `json:"object" yaml:"object"`
	Rows   int64  `json:"rows" yaml:"rows"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

// TotalBytes sums the downloaded bytes of every file.
func (s *Summary) TotalBytes() int64 {
	var n int64
	for _, f := range s.Files {
		n += f.Bytes
	}
	return n
}
