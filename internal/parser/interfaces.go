package parser

import (
	"github.com/toyz/contractscan/internal/models"
)

// SourceParser defines the interface for reading controller metadata from one source file
type SourceParser interface {
	// ParseFile returns nil without error when the file declares no controller
	ParseFile(content, filePath string) (*models.ControllerInfo, error)
	IsControllerCandidate(content string) bool
}
