package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/user/bimmer_log_analyzer_go/internal/apperr"
	"github.com/user/bimmer_log_analyzer_go/internal/config"
)

// Paths holds the source log and the outputs derived from it.
type Paths struct {
	Source     string
	Report     string
	SensorList string
	Workbook   string // Empty when the workbook export is disabled
}

// DerivePaths checks that source is a .csv file and places every output
// next to it, named after it with the configured suffixes.
func DerivePaths(source string, cfg config.OutputConfig) (Paths, error) {
	ext := filepath.Ext(source)
	if !strings.EqualFold(ext, ".csv") {
		return Paths{}, &apperr.InvalidFileTypeError{Path: source, Ext: ext}
	}

	dir := filepath.Dir(source)
	base := strings.TrimSuffix(filepath.Base(source), ext)

	paths := Paths{
		Source:     source,
		Report:     filepath.Join(dir, base+cfg.ReportSuffix),
		SensorList: filepath.Join(dir, base+cfg.SensorListSuffix),
	}
	if cfg.ExportWorkbook {
		paths.Workbook = filepath.Join(dir, base+cfg.WorkbookSuffix)
	}
	return paths, nil
}
