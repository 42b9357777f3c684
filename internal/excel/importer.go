package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/example/vocapp/internal/apperr"
	"github.com/example/vocapp/internal/clock"
	"github.com/example/vocapp/internal/logger"
	"github.com/example/vocapp/internal/lookup"
	"github.com/example/vocapp/pkg/models"
)

// ImportConfig defines the import configuration
type ImportConfig struct {
	FilePath         string // Path to the Excel or CSV file
	WordColumn       string // Column with the word
	DefinitionColumn string // Optional column with a ready-made definition
	SheetName        string // Sheet to import; empty means the first sheet
	StartRow         int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn: "A",
		StartRow:   2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// WordAdder stores a new word for a learner.
type WordAdder interface {
	Add(ctx context.Context, learnerID int64, word string, definition models.Definition, now time.Time) (*models.Word, error)
}

// Importer bulk-adds word lists. Words without a definition in the file are
// looked up like a single /lookup would.
type Importer struct {
	definer lookup.Definer
	words   WordAdder
	clock   clock.Clock
	log     *logger.Logger
}

func NewImporter(definer lookup.Definer, words WordAdder, clk clock.Clock, log *logger.Logger) *Importer {
	return &Importer{definer: definer, words: words, clock: clk, log: log.With("component", "import")}
}

// ImportWords imports words from an Excel or CSV file into the learner's list.
// Row-level problems are collected in the result; only unreadable files and
// infrastructure failures are returned as errors.
func (im *Importer) ImportWords(ctx context.Context, learnerID int64, cfg ImportConfig) (*ImportResult, error) {
	wordCol, err := columnIndex(cfg.WordColumn)
	if err != nil {
		return nil, err
	}
	defCol := -1
	if cfg.DefinitionColumn != "" {
		if defCol, err = columnIndex(cfg.DefinitionColumn); err != nil {
			return nil, err
		}
	}
	if cfg.StartRow < 1 {
		cfg.StartRow = 1
	}

	var rows [][]string
	if strings.ToLower(filepath.Ext(cfg.FilePath)) == ".csv" {
		rows, err = readCSV(cfg.FilePath)
	} else {
		rows, err = readExcel(cfg.FilePath, cfg.SheetName)
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		rowNum := i + 1
		if rowNum < cfg.StartRow {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		word := cleanWord(cell(row, wordCol))
		if word == "" {
			continue
		}
		result.TotalProcessed++

		if err := im.processRow(ctx, learnerID, word, cell(row, defCol), result); err != nil {
			if apperr.KindOf(err) == apperr.KindInternal {
				return result, errors.Wrapf(err, "row %d", rowNum)
			}
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", rowNum, apperr.Message(err)))
		}
	}

	im.log.Info("import finished",
		"learner_id", learnerID,
		"file", cfg.FilePath,
		"processed", result.TotalProcessed,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

func (im *Importer) processRow(ctx context.Context, learnerID int64, word, definition string, result *ImportResult) error {
	normalized, err := models.NormalizeWord(word)
	if err != nil {
		return err
	}

	var def models.Definition
	if definition = strings.TrimSpace(definition); definition != "" {
		def = models.Definition{"Definition": {definition}}
	} else {
		if def, err = im.definer.Define(ctx, normalized); err != nil {
			return err
		}
	}

	_, err = im.words.Add(ctx, learnerID, normalized, def, im.clock.Now())
	if apperr.Is(err, apperr.KindConflict) {
		result.Skipped++
		return nil
	}
	if err != nil {
		return err
	}
	result.Created++
	return nil
}

func readExcel(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Excel file")
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get rows")
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open CSV file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "error reading CSV")
		}
		rows = append(rows, row)
	}
}

// columnIndex converts a column name such as "A" or "AB" to a 0-based index.
func columnIndex(column string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(column))
	if err != nil {
		return 0, apperr.Validation("invalid column %q", column)
	}
	return n - 1, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// cleanWord drops trailing notes in parentheses, e.g. "go (went, gone)".
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		word = word[:i]
	}
	return strings.TrimSpace(word)
}
