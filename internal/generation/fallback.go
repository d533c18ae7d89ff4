package generation

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/phrazzld/questiongen/internal/domain"
)

// scanState is the state of the fallback line scanner.
type scanState int

const (
	awaitingQuestion scanState = iota
	inQuestionNoAnswer
	inQuestionWithAnswer
)

// lineKind classifies a single line of model output.
type lineKind int

const (
	plainLine lineKind = iota
	questionLine
	answerLine
	explanationLine
	difficultyLine
	topicLine
)

// field names the record field a bare marker line left open.
type field int

const (
	noField field = iota
	questionField
	answerField
	explanationField
)

// Characters allowed before a marker: markdown emphasis, headings, bullets
// and the quote that opens a JSON key.
const markerLead = "*#>-\" \t"

// Marker words must end at a word boundary or run into a number, so
// "Questionnaires ..." or "Answering ..." stay plain text.
var (
	questionMarker    = regexp.MustCompile(`^(?:questions?(?:\b|\d)|q[:.])`)
	answerMarker      = regexp.MustCompile(`^(?:answers?\b|a[:.])`)
	explanationMarker = regexp.MustCompile(`^explanation\b`)

	numberedQuestion = regexp.MustCompile(`^q\s*\d+\s*[:.)]`)
	metadataMarker   = regexp.MustCompile(`^(difficulty|topic)[\s*"']*:`)

	questionLabel    = regexp.MustCompile(`(?i)^[*#>\-"\s]*(?:questions?|q)(?:\s*#?\s*\d+|\b)[\s*"']*[:.)\-]?[\s*"']*`)
	answerLabel      = regexp.MustCompile(`(?i)^[*#>\-"\s]*(?:answers?|a)\b[\s*"']*[:.)\-]?[\s*"']*`)
	explanationLabel = regexp.MustCompile(`(?i)^[*#>\-"\s]*explanation\b[\s*"']*[:.)\-]?[\s*"']*`)
	metadataLabel    = regexp.MustCompile(`(?i)^[*#>\-"\s]*(?:difficulty|topic)[\s*"']*:[\s*"']*`)
)

// filler is punctuation that carries no content on its own: JSON syntax,
// markdown emphasis and horizontal rules.
const filler = "{}[](),.:;\"'`*_=~#>|-"

// classifyLine decides what a trimmed, non-empty line represents.
func classifyLine(line string) lineKind {
	probe := strings.TrimLeft(strings.ToLower(line), markerLead)

	switch {
	case questionMarker.MatchString(probe), numberedQuestion.MatchString(probe):
		return questionLine
	case answerMarker.MatchString(probe):
		return answerLine
	case explanationMarker.MatchString(probe):
		return explanationLine
	}

	if m := metadataMarker.FindStringSubmatch(probe); m != nil {
		if m[1] == "difficulty" {
			return difficultyLine
		}
		return topicLine
	}
	return plainLine
}

// stripLabel removes the marker label from line and returns the inline text,
// or "" when the marker carries no content of its own.
func stripLabel(line string, label *regexp.Regexp) string {
	text := strings.TrimSpace(label.ReplaceAllString(line, ""))
	text = strings.TrimSpace(strings.TrimSuffix(text, "**"))
	if strings.HasPrefix(strings.TrimLeft(line, " \t*"), `"`) {
		text = strings.TrimSuffix(strings.TrimSuffix(text, ","), `"`)
	}
	if !hasContent(text) {
		return ""
	}
	return text
}

// hasContent reports whether s holds anything besides whitespace and filler.
func hasContent(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsSpace(r) && !strings.ContainsRune(filler, r)
	}) >= 0
}

// fallbackScanner rebuilds question records from loosely structured text.
type fallbackScanner struct {
	state              scanState
	pending            field
	current            domain.QuestionRecord
	records            []domain.QuestionRecord
	requireExplanation bool
}

// parseFallback scans raw line by line and returns every record it recovers.
func (p *Parser) parseFallback(raw string) []domain.QuestionRecord {
	s := &fallbackScanner{requireExplanation: p.requireExplanation}
	for _, line := range strings.Split(raw, "\n") {
		s.feed(strings.TrimSpace(line))
	}
	s.flush()
	return s.records
}

func (s *fallbackScanner) feed(line string) {
	if line == "" {
		return
	}

	switch classifyLine(line) {
	case questionLine:
		s.flush()
		s.current = domain.QuestionRecord{Question: stripLabel(line, questionLabel)}
		s.state = inQuestionNoAnswer
		s.pending = noField
		if s.current.Question == "" {
			s.pending = questionField
		}

	case answerLine:
		if s.state == awaitingQuestion {
			return
		}
		s.current.Answer = stripLabel(line, answerLabel)
		s.pending = noField
		if s.current.Answer == "" {
			s.pending = answerField
			s.state = inQuestionNoAnswer
		} else {
			s.state = inQuestionWithAnswer
		}

	case explanationLine:
		if s.state == awaitingQuestion {
			return
		}
		s.current.Explanation = stripLabel(line, explanationLabel)
		s.pending = noField
		if s.current.Explanation == "" {
			s.pending = explanationField
		}

	case difficultyLine:
		if s.state != awaitingQuestion {
			s.current.Difficulty = domain.Difficulty(stripLabel(line, metadataLabel))
		}

	case topicLine:
		if s.state != awaitingQuestion {
			s.current.Topic = stripLabel(line, metadataLabel)
		}

	case plainLine:
		s.plain(line)
	}
}

// plain handles a line without a marker: it fills a field left open by a
// bare marker, or becomes the answer of a record that has none yet.
func (s *fallbackScanner) plain(line string) {
	if s.state == awaitingQuestion || !hasContent(line) {
		return
	}

	switch s.pending {
	case questionField:
		s.current.Question = line
	case answerField:
		s.current.Answer = line
		s.state = inQuestionWithAnswer
	case explanationField:
		s.current.Explanation = line
	default:
		if s.state == inQuestionNoAnswer {
			s.current.Answer = line
			s.state = inQuestionWithAnswer
		}
	}
	s.pending = noField
}

// flush closes the open record, applying defaults. A record that never
// received question text is discarded.
func (s *fallbackScanner) flush() {
	defer func() {
		s.current = domain.QuestionRecord{}
		s.state = awaitingQuestion
		s.pending = noField
	}()

	if s.state == awaitingQuestion {
		return
	}

	rec := s.current.Normalize(s.requireExplanation)
	if rec.Question == "" {
		return
	}
	if rec.Answer == "" {
		rec.Answer = domain.DefaultAnswer
	}
	s.records = append(s.records, rec)
}
