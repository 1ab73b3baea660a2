package questions

import (
	"fmt"
	"os"
	"strings"

	"github.com/mroshb/quizbot/pkg/errors"
	"github.com/mroshb/quizbot/pkg/logger"
	"github.com/mroshb/quizbot/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// LoadExcel reads every sheet of a workbook. Rows are
// question | A | B | C | D | answer letter, and the first row of each sheet
// is a header.
func LoadExcel(path string) (*Bank, error) {
	if _, err := os.Stat(path); err != nil {
		logger.Error("Question workbook not found", "path", path)
		return NewBank(nil), errors.Wrap(err, errors.ErrCodeMissingQuestionBank, "question workbook not found")
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return NewBank(nil), errors.Wrap(err, errors.ErrCodeMissingQuestionBank, "failed to open question workbook")
	}
	defer f.Close()

	var qs []Question
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			logger.Warn("Failed to read sheet", "sheet", sheetName, "error", err)
			continue
		}

		for i, row := range rows {
			if i == 0 {
				continue
			}
			q, err := parseRow(row)
			if err != nil {
				logger.Warn("Skipping malformed question row", "sheet", sheetName, "row", i+1, "error", err)
				continue
			}
			qs = append(qs, q)
		}
	}

	bank := NewBank(qs)
	logger.Info("Question workbook loaded", "path", path, "count", bank.Len())
	return bank, nil
}

func parseRow(row []string) (Question, error) {
	if len(row) < 6 {
		return Question{}, errors.New(errors.ErrCodeMalformedQuestion, fmt.Sprintf("row has %d cells, want 6", len(row)))
	}

	q := Question{Text: strings.TrimSpace(row[0])}
	for i := 0; i < OptionCount; i++ {
		q.Options[i] = strings.TrimSpace(row[i+1])
	}

	idx, ok := utils.OptionIndex(row[5])
	if !ok {
		return Question{}, errors.New(errors.ErrCodeMalformedQuestion, "answer cell is not A-D: '"+row[5]+"'")
	}
	q.Correct = idx

	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}
