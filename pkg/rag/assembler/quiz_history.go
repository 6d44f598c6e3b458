package assembler

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	DefaultHistoryItems = 2
	MaxHistoryQuestion  = 80
	historyDateLayout   = "2006-01-02"
)

// QuizAttempt is one answered quiz question.
type QuizAttempt struct {
	Question     string
	CorrectIndex int
	ChosenIndex  int
	AnsweredAt   time.Time
}

func (a QuizAttempt) Correct() bool {
	return a.ChosenIndex == a.CorrectIndex
}

// ChoiceLetter maps a 0-based choice index to A, B, C, D.
func ChoiceLetter(i int) string {
	if i < 0 || i > 25 {
		return "?"
	}
	return string(rune('A' + i))
}

// SummarizeQuizHistory renders the n most recent attempts, newest first, one
// line each. The correct choice is only named for wrong answers.
func SummarizeQuizHistory(attempts []QuizAttempt, n int) string {
	if n <= 0 {
		n = DefaultHistoryItems
	}
	if len(attempts) == 0 {
		return ""
	}

	sorted := make([]QuizAttempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AnsweredAt.After(sorted[j].AnsweredAt)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	lines := make([]string, len(sorted))
	for i, a := range sorted {
		verdict := "incorrect"
		if a.Correct() {
			verdict = "correct"
		}
		question := strings.Join(strings.Fields(a.Question), " ")
		line := fmt.Sprintf("%s | %s | Q: %s | chose %s",
			a.AnsweredAt.Format(historyDateLayout), verdict, truncate(question, MaxHistoryQuestion), ChoiceLetter(a.ChosenIndex))
		if !a.Correct() {
			line += ", correct " + ChoiceLetter(a.CorrectIndex)
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
