// package formatter provides functions to export watchlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/flickx/internal/models"
	"github.com/desertthunder/flickx/internal/shared"
)

// Format selects an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
)

// ParseFormat accepts csv, md (or markdown) and txt (or text).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q (want csv, md or txt)", shared.ErrInvalidFlag, s)
	}
}

// Export is a watchlist prepared for writing.
type Export struct {
	Owner      models.Identity
	Items      []models.Movie
	ExportedAt time.Time

	// ImageURL resolves poster paths. Nil leaves paths as stored.
	ImageURL func(path string) string
}

func (e *Export) poster(path string) string {
	if e.ImageURL == nil {
		return path
	}
	return e.ImageURL(path)
}

func rating(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ExportToCSV converts an Export to CSV format with columns: ID, Title, Release Date, Rating, Poster
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Release Date", "Rating", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range export.Items {
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			m.ReleaseDate,
			rating(m.VoteAverage),
			export.poster(m.PosterPath),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// escapeCell keeps pipes and newlines from breaking a Markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// ExportToMarkdown converts an Export to a Markdown document with a table of movies
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	title := "My Watchlist"
	if export.Owner.Name != "" {
		title = fmt.Sprintf("%s's Watchlist", export.Owner.Name)
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)

	if !export.ExportedAt.IsZero() {
		fmt.Fprintf(&buf, "**Exported**: %s\n", export.ExportedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(&buf, "**Movies**: %d\n\n", len(export.Items))

	if len(export.Items) == 0 {
		buf.WriteString("Your watchlist is empty.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Title | Year | Rating | Poster |\n")
	buf.WriteString("|---|-------|------|--------|--------|\n")
	for i, m := range export.Items {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | ![%s](%s) |\n",
			i+1, escapeCell(m.Title), m.Year(), rating(m.VoteAverage), escapeCell(m.Title), export.poster(m.PosterPath))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an Export to plain text format
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("Watchlist")
	if export.Owner.Email != "" {
		fmt.Fprintf(&buf, " for %s", export.Owner.Email)
	}
	fmt.Fprintf(&buf, "\nMovies: %d\n\n", len(export.Items))

	for i, m := range export.Items {
		year := m.Year()
		if year == "" {
			year = "n/a"
		}
		fmt.Fprintf(&buf, "%d. %s (%s) - %s/10\n", i+1, m.Title, year, rating(m.VoteAverage))
	}

	return buf.Bytes(), nil
}

// Render encodes export in format.
func Render(export *Export, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
	}
}

// DefaultFilename is watchlist.{csv,md,txt}.
func DefaultFilename(format Format) string {
	return "watchlist." + string(format)
}

// WriteExport renders export in format and writes it to path, defaulting to [DefaultFilename].
func WriteExport(export *Export, format Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(format)
	}

	data, err := Render(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}
