package questions

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mroshb/quizbot/pkg/errors"
	"github.com/mroshb/quizbot/pkg/logger"
	"github.com/mroshb/quizbot/pkg/utils"
)

const blockSeparator = "---"

// Load reads the bank from path, choosing the spreadsheet loader for .xlsx
// files. A missing file yields an empty bank and a MissingQuestionBank error
// the caller may log and ignore.
func Load(path string) (*Bank, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadExcel(path)
	}
	return LoadText(path)
}

// LoadText reads the line based question format.
func LoadText(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Error("Question bank not found", "path", path)
			return NewBank(nil), errors.Wrap(err, errors.ErrCodeMissingQuestionBank, "question bank not found")
		}
		return NewBank(nil), errors.Wrap(err, errors.ErrCodeMissingQuestionBank, "failed to read question bank")
	}

	bank := ParseText(string(data))
	logger.Info("Question bank loaded", "path", path, "count", bank.Len())
	return bank, nil
}

// ParseText parses blocks separated by "---". Each block holds the question,
// four options and an answer line such as "BENAR=B" or "ANSWER=B".
// Malformed blocks are skipped with a warning.
func ParseText(content string) *Bank {
	var qs []Question
	number := 0

	for _, block := range strings.Split(strings.TrimSpace(content), blockSeparator) {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) == 0 {
			continue
		}
		number++

		q, err := parseBlock(lines)
		if err != nil {
			logger.Warn("Skipping malformed question", "number", number, "error", err)
			continue
		}
		qs = append(qs, q)
	}

	return NewBank(qs)
}

func parseBlock(lines []string) (Question, error) {
	if len(lines) < 6 {
		return Question{}, errors.New(errors.ErrCodeMalformedQuestion, "block has fewer than six lines")
	}

	q := Question{Text: lines[0], Correct: -1}
	copy(q.Options[:], utils.StripOptionLabels(lines[1:1+OptionCount]))

	raw := ""
	for _, line := range lines[5:] {
		if key, value, ok := strings.Cut(line, "="); ok && isAnswerKey(key) {
			raw = value
			break
		}
	}

	idx, ok := utils.OptionIndex(raw)
	if !ok {
		return Question{}, errors.New(errors.ErrCodeMalformedQuestion, "answer line missing or not A-D: '"+raw+"'")
	}
	q.Correct = idx

	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

func isAnswerKey(key string) bool {
	switch strings.ToUpper(strings.TrimSpace(key)) {
	case "BENAR", "ANSWER", "JAWABAN":
		return true
	}
	return false
}

// FormatText renders a bank in the format ParseText reads.
func FormatText(b *Bank) string {
	flatten := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

	var sb strings.Builder
	for i := 0; i < b.Len(); i++ {
		q, _ := b.At(i)
		if i > 0 {
			sb.WriteString(blockSeparator + "\n")
		}
		sb.WriteString(flatten.Replace(q.Text) + "\n")
		for j, opt := range q.Options {
			sb.WriteString(utils.OptionLabel(j) + ". " + flatten.Replace(opt) + "\n")
		}
		sb.WriteString("BENAR=" + utils.OptionLabel(q.Correct) + "\n")
	}
	return sb.String()
}
