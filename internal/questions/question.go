package questions

import (
	"fmt"
	"strings"

	"github.com/mroshb/quizbot/pkg/errors"
)

// OptionCount is the number of choices every question carries.
const OptionCount = 4

// Question is one multiple-choice item. It is never mutated after loading.
type Question struct {
	Text    string
	Options [OptionCount]string
	Correct int
}

// Validate reports a MalformedQuestion error when the record is unusable.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New(errors.ErrCodeMalformedQuestion, "question text is empty")
	}
	if q.Correct < 0 || q.Correct >= OptionCount {
		return errors.New(errors.ErrCodeMalformedQuestion, fmt.Sprintf("correct index %d out of range", q.Correct))
	}
	seen := make(map[string]bool, OptionCount)
	for i, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return errors.New(errors.ErrCodeMalformedQuestion, fmt.Sprintf("option %d is empty", i))
		}
		key := strings.ToLower(strings.TrimSpace(opt))
		if seen[key] {
			return errors.New(errors.ErrCodeMalformedQuestion, fmt.Sprintf("duplicate option %q", opt))
		}
		seen[key] = true
	}
	return nil
}

// Bank is the ordered, read-only set of questions for a run of the bot.
type Bank struct {
	questions []Question
}

func NewBank(qs []Question) *Bank {
	cp := make([]Question, len(qs))
	copy(cp, qs)
	return &Bank{questions: cp}
}

func (b *Bank) Len() int {
	if b == nil {
		return 0
	}
	return len(b.questions)
}

// At returns the question at idx; ok is false past the end.
func (b *Bank) At(idx int) (Question, bool) {
	if b == nil || idx < 0 || idx >= len(b.questions) {
		return Question{}, false
	}
	return b.questions[idx], true
}
