// Package export renders the tabular projection and gap report as
// byte-level artifacts: CSV, Markdown, JSON, and a compressed bundle.
// It holds no analysis logic; rows and gaps arrive fully computed.
package export

import (
	"archive/tar"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"

	"tmx/internal/gaps"
	"tmx/internal/logging"
	"tmx/internal/model"
	"tmx/internal/output"
)

// Format identifies an export output format
type Format string

const (
	// FormatCSV renders comma-separated values
	FormatCSV Format = "csv"
	// FormatMarkdown renders a Markdown document
	FormatMarkdown Format = "markdown"
	// FormatJSON renders a JSON document
	FormatJSON Format = "json"
)

// Exporter renders traceability artifacts
type Exporter struct {
	logger *logging.Logger
}

// NewExporter creates an exporter
func NewExporter(logger *logging.Logger) *Exporter {
	return &Exporter{logger: logger}
}

var rowHeader = []string{
	"file", "start_line", "end_line", "function",
	"feature_id", "user_requirement_id", "software_requirement_id", "risk_id",
	"confidence",
}

// WriteRowsCSV renders the table rows as CSV, one record per row plus a
// header line
func (e *Exporter) WriteRowsCSV(w io.Writer, rows []model.TableRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(rowHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.CodeRef.FilePath,
			strconv.Itoa(row.CodeRef.StartLine),
			strconv.Itoa(row.CodeRef.EndLine),
			row.CodeRef.Function,
			row.FeatureID,
			row.UserRequirementID,
			row.SoftwareRequirementID,
			row.RiskID,
			output.FormatFloat(row.Confidence),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var gapHeader = []string{
	"category", "severity", "source_kind", "source_id", "target_kind", "target_id", "description", "recommendation",
}

// WriteGapsCSV renders the gap list as CSV
func (e *Exporter) WriteGapsCSV(w io.Writer, gapList []model.Gap) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(gapHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, g := range gapList {
		record := []string{
			string(g.Category),
			g.Severity,
			string(g.SourceKind),
			g.SourceID,
			string(g.TargetKind),
			g.TargetID,
			g.Description,
			g.Recommendation,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatMarkdown renders the rows and gap report as a Markdown document
func (e *Exporter) FormatMarkdown(analysisID string, rows []model.TableRow, report *gaps.Report) string {
	var sb bytes.Buffer

	sb.WriteString(fmt.Sprintf("# Traceability Matrix: %s\n\n", analysisID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339)))

	sb.WriteString("## Chains\n\n")
	sb.WriteString("| Code | Feature | User Req | Software Req | Risk | Confidence |\n")
	sb.WriteString("|---|---|---|---|---|---|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
			row.CodeRef.Key(),
			row.FeatureID,
			dash(row.UserRequirementID),
			dash(row.SoftwareRequirementID),
			dash(row.RiskID),
			output.FormatFloat(row.Confidence),
		))
	}

	if report != nil {
		sb.WriteString("\n## Gaps\n\n")
		sb.WriteString(fmt.Sprintf("critical: %d, high: %d, medium: %d, low: %d\n\n",
			report.Summary.Critical, report.Summary.High, report.Summary.Medium, report.Summary.Low))
		sb.WriteString("| Severity | Category | Entity | Description |\n")
		sb.WriteString("|---|---|---|---|\n")
		for _, g := range report.Gaps {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				g.Severity, g.Category, g.SourceID, g.Description))
		}

		if len(report.Recommendations) > 0 {
			sb.WriteString("\n## Recommendations\n\n")
			for _, rec := range report.Recommendations {
				sb.WriteString(fmt.Sprintf("- %s\n", rec))
			}
		}
	}

	return sb.String()
}

// FormatJSON renders rows and gaps as one JSON document
func (e *Exporter) FormatJSON(analysisID string, rows []model.TableRow, report *gaps.Report) ([]byte, error) {
	doc := map[string]interface{}{
		"analysisId": analysisID,
		"rows":       rows,
	}
	if report != nil {
		doc["gaps"] = report.Gaps
		doc["summary"] = report.Summary
		doc["recommendations"] = report.Recommendations
	}
	return json.MarshalIndent(doc, "", "  ")
}

// WriteBundle writes a gzip-compressed tar archive containing the CSV,
// Markdown, and JSON artifacts for one analysis run
func (e *Exporter) WriteBundle(path, analysisID string, rows []model.TableRow, report *gaps.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()
	tw := tar.NewWriter(gw)
	defer tw.Close()

	var rowsCSV bytes.Buffer
	if err := e.WriteRowsCSV(&rowsCSV, rows); err != nil {
		return err
	}
	if err := addFile(tw, "matrix.csv", rowsCSV.Bytes()); err != nil {
		return err
	}

	if report != nil {
		var gapsCSV bytes.Buffer
		if err := e.WriteGapsCSV(&gapsCSV, report.Gaps); err != nil {
			return err
		}
		if err := addFile(tw, "gaps.csv", gapsCSV.Bytes()); err != nil {
			return err
		}
	}

	md := e.FormatMarkdown(analysisID, rows, report)
	if err := addFile(tw, "matrix.md", []byte(md)); err != nil {
		return err
	}

	jsonDoc, err := e.FormatJSON(analysisID, rows, report)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON artifact: %w", err)
	}
	if err := addFile(tw, "matrix.json", jsonDoc); err != nil {
		return err
	}

	e.logger.Info("Export bundle written", map[string]interface{}{
		"path":       path,
		"analysisId": analysisID,
		"rows":       len(rows),
	})

	return nil
}

func addFile(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(data)),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("failed to write %s to bundle: %w", name, err)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
