package models

import "time"

// ExtractionReport is the outcome of one extraction run over a repository
type ExtractionReport struct {
	RunID               string              `json:"runId" yaml:"runId"`
	Repository          string              `json:"repository" yaml:"repository"`
	StartedAt           time.Time           `json:"startedAt" yaml:"startedAt"`
	Duration            time.Duration       `json:"duration" yaml:"duration"`
	FilesScanned        int                 `json:"filesScanned" yaml:"filesScanned"`
	ControllersFound    int                 `json:"controllersFound" yaml:"controllersFound"`
	StructuralFallbacks int                 `json:"structuralFallbacks" yaml:"structuralFallbacks"`
	Contracts           []ExtractedContract `json:"contracts" yaml:"contracts"`
	FileFailures        []ExtractionFailure `json:"fileFailures,omitempty" yaml:"fileFailures,omitempty"`
	MethodFailures      []ExtractionFailure `json:"methodFailures,omitempty" yaml:"methodFailures,omitempty"`
}

// ExtractionFailure records a file or method that was skipped
type ExtractionFailure struct {
	File   string `json:"file" yaml:"file"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	Error  string `json:"error" yaml:"error"`
}
