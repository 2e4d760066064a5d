package generator

import (
	"io"

	"github.com/toyz/contractscan/internal/models"
)

// Renderer writes an extraction report in one output format
type Renderer interface {
	Format() Format
	Render(w io.Writer, report *models.ExtractionReport, info DocumentInfo) error
}
