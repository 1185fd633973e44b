package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/matzehuels/licensetower/pkg/analysis"
)

// CSVHeader is the first row written by [WriteCSV].
var CSVHeader = []string{"ecosystem", "name", "version", "license", "cached", "manifest", "repository", "error"}

// WriteCSV writes one row per dependency. The version column holds the
// resolved version, falling back to the declared one.
func WriteCSV(w io.Writer, report *analysis.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range report.Dependencies {
		version := r.Info.Version
		if version == "" {
			version = r.Dependency.Version
		}
		row := []string{
			string(r.Dependency.Ecosystem),
			r.Dependency.Name,
			version,
			r.Info.License,
			strconv.FormatBool(r.Cached),
			r.Dependency.Manifest,
			r.Info.Repository,
			r.Error,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
