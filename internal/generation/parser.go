package generation

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/phrazzld/questiongen/internal/domain"
)

// ParsePath names the route a response took through the parser.
type ParsePath string

// Parse paths, reported for logging and metrics.
const (
	PathStrict    ParsePath = "strict"
	PathFallback  ParsePath = "fallback"
	PathSynthetic ParsePath = "synthetic"
)

// Parser turns raw model output into question records. It never fails:
// unusable output degrades to heuristic recovery and finally to a single
// synthetic record derived from the materials.
type Parser struct {
	requireExplanation bool
}

// NewParser creates a Parser. When requireExplanation is set every record
// carries an explanation, using a placeholder when the model gave none.
func NewParser(requireExplanation bool) *Parser {
	return &Parser{requireExplanation: requireExplanation}
}

// Parse builds a GenerationResult from raw, truncated to count records.
// elapsed is reported as the generation time.
func (p *Parser) Parse(raw, materials string, count int, elapsed time.Duration) domain.GenerationResult {
	result, _ := p.ParseWithPath(raw, materials, count, elapsed)
	return result
}

// ParseWithPath behaves like Parse and also reports which path produced the records.
func (p *Parser) ParseWithPath(
	raw, materials string,
	count int,
	elapsed time.Duration,
) (domain.GenerationResult, ParsePath) {
	path := PathStrict
	records, err := p.parseStrict(raw)
	if err != nil || len(records) == 0 {
		path = PathFallback
		records = p.parseFallback(raw)
	}
	if len(records) == 0 {
		path = PathSynthetic
		records = []domain.QuestionRecord{syntheticRecord(materials, p.requireExplanation)}
	}

	if count > 0 && len(records) > count {
		records = records[:count]
	}

	seconds := elapsed.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	return domain.GenerationResult{Questions: records, GenerationTime: seconds}, path
}

// responsePayload is the object the prompt asks the model to return.
type responsePayload struct {
	Questions []domain.QuestionRecord `json:"questions"`
}

// parseStrict decodes the JSON object embedded in raw. Records without a
// question or answer are dropped.
func (p *Parser) parseStrict(raw string) ([]domain.QuestionRecord, error) {
	candidate, ok := extractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
	}

	if err := validatePayload([]byte(candidate)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	records := make([]domain.QuestionRecord, 0, len(payload.Questions))
	for _, q := range payload.Questions {
		q = q.Normalize(p.requireExplanation)
		if q.Valid() {
			records = append(records, q)
		}
	}
	return records, nil
}

const jsonFence = "```json"

// extractJSON returns the body of a closed ```json fence if present,
// otherwise the text between the first '{' and the last '}'.
func extractJSON(raw string) (string, bool) {
	content := strings.TrimSpace(raw)

	if i := strings.Index(content, jsonFence); i >= 0 {
		body := content[i+len(jsonFence):]
		if end := strings.Index(body, "```"); end >= 0 {
			return strings.TrimSpace(body[:end]), true
		}
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return "", false
	}
	return content[start : end+1], true
}

// syntheticRecord fabricates a record from the start of the materials so a
// generation run always yields at least one question.
func syntheticRecord(materials string, requireExplanation bool) domain.QuestionRecord {
	q := domain.QuestionRecord{
		Question: fmt.Sprintf("Based on the materials about %s..., explain the key concepts.",
			runePrefix(materials, 50)),
		Answer:     fmt.Sprintf("The materials discuss: %s...", runePrefix(materials, 200)),
		Difficulty: domain.DefaultDifficulty,
		Topic:      domain.DefaultTopic,
	}
	return q.Normalize(requireExplanation)
}

func runePrefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
