package importexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/smith3v/lexilogio/pkg/db"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const maxDelimiterSampleRecords = 20

// ParseCSV reads question,answer[,category[,tags]] rows. The delimiter is
// detected among comma, tab and semicolon, and a leading header row is skipped.
func ParseCSV(data []byte) ([]Card, int, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	delimiter := detectCSVDelimiter(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	cards, skipped := cardsFromRows(records)
	return cards, skipped, nil
}

// cardsFromRows is shared by the CSV and XLSX readers.
func cardsFromRows(rows [][]string) ([]Card, int) {
	var cards []Card
	skipped := 0
	checkedHeader := false
	for _, row := range rows {
		if isEmptyRecord(row) {
			skipped++
			continue
		}
		if !checkedHeader {
			checkedHeader = true
			if isHeaderRecord(row) {
				continue
			}
		}
		if len(row) < 2 {
			skipped++
			continue
		}
		card := Card{
			Question: strings.TrimSpace(row[0]),
			Answer:   strings.TrimSpace(row[1]),
		}
		if card.Question == "" || card.Answer == "" {
			skipped++
			continue
		}
		if len(row) > 2 {
			card.Category = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			card.Tags = splitTags(row[3])
		}
		cards = append(cards, card)
	}
	return cards, skipped
}

func detectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', '\t', ';'}
	bestDelimiter := candidates[0]
	bestScore := -1

	for _, delimiter := range candidates {
		score, err := scoreDelimiter(data, delimiter, maxDelimiterSampleRecords)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestDelimiter = delimiter
		}
	}

	if bestScore <= 0 {
		return ','
	}
	return bestDelimiter
}

// scoreDelimiter counts how many sampled records agree on the most common
// multi-column width.
func scoreDelimiter(data []byte, delimiter rune, maxRecords int) (int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	counts := make(map[int]int)
	for seen := 0; seen < maxRecords; {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if isEmptyRecord(record) {
			continue
		}
		seen++
		if len(record) >= 2 {
			counts[len(record)]++
		}
	}

	best := 0
	for _, score := range counts {
		best = max(best, score)
	}
	return best, nil
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

var (
	questionHeaders = map[string]struct{}{"question": {}, "q": {}, "front": {}, "term": {}, "word1": {}}
	answerHeaders   = map[string]struct{}{"answer": {}, "a": {}, "back": {}, "definition": {}, "word2": {}}
)

func isHeaderRecord(record []string) bool {
	if len(record) < 2 {
		return false
	}
	_, leftOK := questionHeaders[strings.ToLower(strings.TrimSpace(record[0]))]
	_, rightOK := answerHeaders[strings.ToLower(strings.TrimSpace(record[1]))]
	return leftOK && rightOK
}

// BuildExportCSV writes terms as question,answer,category,tags with a UTF-8
// BOM and CRLF line endings so spreadsheet tools open it cleanly.
func BuildExportCSV(terms []*db.Term) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(utf8BOM); err != nil {
		return nil, err
	}

	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true
	if err := writer.Write([]string{"question", "answer", "category", "tags"}); err != nil {
		return nil, err
	}
	for _, term := range terms {
		if err := writer.Write([]string{term.Question, term.Answer, termCategory(term), termTags(term)}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
