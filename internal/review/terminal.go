package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/example/vocapp/pkg/models"
)

const blank = "_______"

// TerminalPresenter shows a word's definition and reads the learner's guess
// from a line-oriented input.
type TerminalPresenter struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewTerminalPresenter(in io.Reader, out io.Writer) *TerminalPresenter {
	return &TerminalPresenter{in: bufio.NewScanner(in), out: out}
}

// Prompt returns io.EOF once the input is exhausted.
func (p *TerminalPresenter) Prompt(ctx context.Context, word models.Word, position, total int) (bool, error) {
	fmt.Fprintf(p.out, "\n[%d/%d] Which word matches this definition?\n", position, total)
	fmt.Fprint(p.out, FormatDefinition(word.Definition, word.Word))
	fmt.Fprint(p.out, "> ")

	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return false, err
		}
		return false, io.EOF
	}

	correct := strings.EqualFold(strings.TrimSpace(p.in.Text()), word.Word)
	if correct {
		fmt.Fprintln(p.out, "Correct!")
	} else {
		fmt.Fprintf(p.out, "The answer was %s.\n", word.Word)
	}
	return correct, nil
}

// FormatDefinition renders senses grouped by part of speech, with every
// occurrence of answer blanked out.
func FormatDefinition(def models.Definition, answer string) string {
	parts := make([]string, 0, len(def))
	for pos := range def {
		parts = append(parts, pos)
	}
	sort.Strings(parts)

	var b strings.Builder
	for _, pos := range parts {
		fmt.Fprintf(&b, "%s:\n", pos)
		for i, sense := range def[pos] {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, replaceWordWithBlank(sense, answer))
		}
	}
	return b.String()
}

// replaceWordWithBlank blanks every case-insensitive occurrence of word.
func replaceWordWithBlank(sentence, word string) string {
	if word == "" {
		return sentence
	}
	lower := strings.ToLower(sentence)
	target := strings.ToLower(word)
	if len(lower) != len(sentence) {
		return sentence
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, target)
		if i < 0 {
			b.WriteString(sentence)
			return b.String()
		}
		b.WriteString(sentence[:i])
		b.WriteString(blank)
		sentence = sentence[i+len(target):]
		lower = lower[i+len(target):]
	}
}
