// Package preview renders delimited text and workbook sheets as bounded, rectangular grids.
package preview

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/ukaji3/ivasins-go/pkg/ivasins/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultMaxRows is the row cap used for on-screen previews.
const DefaultMaxRows = 100

// Load reads the delimited file at path into a grid of at most maxRows data rows.
func Load(path string, maxRows int) (*models.PreviewGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, maxRows)
}

// Read builds a grid from delimited UTF-8 text. A leading BOM is dropped.
// A source without a header line yields an empty grid.
func Read(r io.Reader, maxRows int) (*models.PreviewGrid, error) {
	br := bufio.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))

	header, ok, err := readLine(br)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &models.PreviewGrid{}, nil
	}

	delim := DetectDelimiter(header)
	grid := &models.PreviewGrid{
		Columns:   headerFields(SplitLine(header, delim)),
		Delimiter: delim,
	}

	for {
		line, ok, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		if len(grid.Rows) >= maxRows {
			grid.Truncated = true
			break
		}
		grid.Rows = append(grid.Rows, normalizeRow(SplitLine(line, delim), len(grid.Columns)))
	}
	return grid, nil
}

// DetectDelimiter picks the most frequent of tab, semicolon and comma in the
// header line. Ties go to tab, then semicolon.
func DetectDelimiter(header string) rune {
	tabs := strings.Count(header, "\t")
	semis := strings.Count(header, ";")
	commas := strings.Count(header, ",")
	switch {
	case tabs >= semis && tabs >= commas:
		return '\t'
	case semis >= commas:
		return ';'
	default:
		return ','
	}
}

// SplitLine splits line on delim, keeping empty fields including trailing ones.
func SplitLine(line string, delim rune) []string {
	return strings.Split(line, string(delim))
}

// headerFields drops a trailing empty field left by a trailing delimiter.
func headerFields(fields []string) []string {
	if n := len(fields); n > 0 && fields[n-1] == "" {
		return fields[:n-1]
	}
	return fields
}

// normalizeRow truncates or pads fields to exactly width cells.
func normalizeRow(fields []string, width int) []string {
	row := make([]string, width)
	copy(row, fields)
	return row
}

// readLine returns the next line without its terminator; ok is false at EOF.
func readLine(br *bufio.Reader) (string, bool, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	if line == "" && err != nil {
		return "", false, nil
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, true, nil
}
