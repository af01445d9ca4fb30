package excel

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"goldendash/domain/catalog"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// DataReader reads example rows from an Excel or CSV file. The first row holds the
// headers; header names match the example fields (name, category, status, ...).
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	log      zerolog.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, log zerolog.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{
		filePath: filePath,
		fileType: fileType,
		log:      log.With().Str("component", "DataReader").Logger(),
	}
}

// ReadExamples reads every data row into an example
func (r *DataReader) ReadExamples() ([]catalog.Example, error) {
	r.log.Info().Str("type", r.fileType).Str("path", r.filePath).Msg("reading examples")

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(r.fileType))
	}

	return r.processRows(rows)
}

// readExcelRows reads the first sheet
func (r *DataReader) readExcelRows() ([][]string, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	r.log.Debug().Dur("elapsed", time.Since(startTime)).Int("rows", len(rows)).Msg("sheet read")
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// processRows maps header names to example fields. Blank rows are skipped; a cell that
// cannot be parsed for a numeric field fails the whole import with its row number.
func (r *DataReader) processRows(rows [][]string) ([]catalog.Example, error) {
	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		key = strings.ReplaceAll(key, " ", "_")
		index[key] = i
	}
	if _, ok := index["name"]; !ok {
		return nil, fmt.Errorf("missing required column: name")
	}

	var examples []catalog.Example
	for n, row := range rows[1:] {
		line := n + 2
		cell := func(key string) string {
			i, ok := index[key]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		if cell("name") == "" {
			continue
		}

		e := catalog.Example{
			Name:        cell("name"),
			Status:      cell("status"),
			Category:    optionalText(cell("category")),
			Description: optionalText(cell("description")),
		}
		var err error
		if e.Priority, err = optionalInt(cell("priority")); err != nil {
			return nil, fmt.Errorf("row %d: priority: %w", line, err)
		}
		if e.Score, err = optionalFloat(cell("score")); err != nil {
			return nil, fmt.Errorf("row %d: score: %w", line, err)
		}
		if e.Complexity, err = optionalInt(cell("complexity")); err != nil {
			return nil, fmt.Errorf("row %d: complexity: %w", line, err)
		}
		if e.Speed, err = optionalInt(cell("speed")); err != nil {
			return nil, fmt.Errorf("row %d: speed: %w", line, err)
		}
		if e.Quality, err = optionalInt(cell("quality")); err != nil {
			return nil, fmt.Errorf("row %d: quality: %w", line, err)
		}
		examples = append(examples, e)
	}

	r.log.Info().Int("examples", len(examples)).Msg("examples read")
	return examples, nil
}

func optionalText(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func optionalInt(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	n := int(f)
	if float64(n) != f {
		return nil, fmt.Errorf("%q is not a whole number", v)
	}
	return &n, nil
}

func optionalFloat(v string) (*float64, error) {
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
