package quiz

import (
	"strings"
	"testing"
)

func TestParser_ParseQuestionsOptionsAndExplanation(t *testing.T) {
	inner := strings.Join([]string{
		"",
		"---",
		"shuffleAnswers: true",
		"---",
		"### Which loop runs at least once?",
		"- [x] do...while",
		"- [ ] for...in",
		"",
		"> **Explanation:** the body runs before the check",
		"",
		"## Pick the block scoped keywords",
		"- [x] let",
		"- [x] const",
		"- var",
		"",
	}, "\n")

	block := NewParser().Parse(inner, 10)

	if block.HeaderError != nil {
		t.Fatalf("unexpected header error: %v", block.HeaderError)
	}
	if block.Options["shuffleAnswers"] != true {
		t.Fatalf("expected shuffleAnswers option, got %v", block.Options)
	}
	if len(block.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d: %+v", len(block.Questions), block.Questions)
	}

	first := block.Questions[0]
	if first.Text != "Which loop runs at least once?" {
		t.Fatalf("unexpected question text %q", first.Text)
	}
	if !strings.HasPrefix(first.Slug, "which-loop") {
		t.Fatalf("unexpected slug %q", first.Slug)
	}
	if first.Line != 14 {
		t.Fatalf("expected question on line 14, got %d", first.Line)
	}
	if len(first.Options) != 2 {
		t.Fatalf("expected 2 options, got %+v", first.Options)
	}
	if !first.Options[0].Correct || first.Options[0].Text != "do...while" || first.Options[0].Line != 15 {
		t.Fatalf("unexpected first option %+v", first.Options[0])
	}
	if first.Options[1].Correct || !first.Options[1].Marked {
		t.Fatalf("unexpected second option %+v", first.Options[1])
	}
	if first.CorrectCount() != 1 || first.IncorrectCount() != 1 {
		t.Fatalf("unexpected counts correct=%d incorrect=%d", first.CorrectCount(), first.IncorrectCount())
	}
	if !first.HasExplanation || first.Explanation != "the body runs before the check" {
		t.Fatalf("unexpected explanation %q (present=%v)", first.Explanation, first.HasExplanation)
	}

	second := block.Questions[1]
	if second.Line != 20 {
		t.Fatalf("expected question on line 20, got %d", second.Line)
	}
	if second.CorrectCount() != 2 || second.IncorrectCount() != 0 {
		t.Fatalf("unexpected counts correct=%d incorrect=%d", second.CorrectCount(), second.IncorrectCount())
	}
	if second.Options[2].Marked {
		t.Fatalf("plain list item must not count as an answer: %+v", second.Options[2])
	}
	if second.HasExplanation {
		t.Fatal("second question has no explanation")
	}
}

func TestParser_ParseWithoutHeader(t *testing.T) {
	inner := "\nSome intro text.\n\n# Only question\n- [ ] a\n- [ ] b\n"

	block := NewParser().Parse(inner, 1)
	if block.Options != nil || block.HeaderError != nil {
		t.Fatalf("expected no header, got options=%v err=%v", block.Options, block.HeaderError)
	}
	if len(block.Questions) != 1 {
		t.Fatalf("expected 1 question, got %+v", block.Questions)
	}
	if block.Questions[0].Line != 4 {
		t.Fatalf("expected line 4, got %d", block.Questions[0].Line)
	}
	if block.Questions[0].CorrectCount() != 0 || block.Questions[0].IncorrectCount() != 2 {
		t.Fatalf("unexpected counts for %+v", block.Questions[0])
	}
}

func TestParser_ParseMalformedHeader(t *testing.T) {
	inner := "\n---\nshuffleAnswers: [\n---\n### Q\n- [x] a\n"

	block := NewParser().Parse(inner, 1)
	if block.HeaderError == nil {
		t.Fatal("expected header error")
	}
	if len(block.Questions) != 1 {
		t.Fatalf("questions after a broken header are still parsed, got %+v", block.Questions)
	}
}

func TestSplitHeader(t *testing.T) {
	header, rest, ok := splitHeader([]byte("\n---\na: 1\n---\nbody"))
	if !ok {
		t.Fatal("expected header")
	}
	if string(header) != "---\na: 1\n---\n" || string(rest) != "body" {
		t.Fatalf("unexpected split header=%q rest=%q", header, rest)
	}

	if _, _, ok := splitHeader([]byte("---\nnever closed")); ok {
		t.Fatal("unterminated header must not split")
	}
	if _, _, ok := splitHeader([]byte("### heading")); ok {
		t.Fatal("plain body must not split")
	}
}
