package importexport

import (
	"bufio"
	"bytes"
	"strings"
)

// Markdown cards look like
//
//	Q: question, possibly over several lines
//	A: answer
//	C: category
//	T: tag1 tag2
//	---
//
// A new Q: also ends the previous card.
const (
	mdQuestion  = "Q:"
	mdAnswer    = "A:"
	mdCategory  = "C:"
	mdTags      = "T:"
	mdSeparator = "---"
)

type mdField int

const (
	mdNone mdField = iota
	mdInQuestion
	mdInAnswer
	mdInCategory
	mdInTags
)

type mdParser struct {
	cards   []Card
	skipped int
	card    Card
	field   mdField
	block   []string
}

func (p *mdParser) flushBlock() {
	if len(p.block) == 0 {
		return
	}
	content := strings.TrimSpace(strings.Join(p.block, "\n"))
	switch p.field {
	case mdInQuestion:
		p.card.Question = content
	case mdInAnswer:
		p.card.Answer = content
	case mdInCategory:
		p.card.Category = content
	case mdInTags:
		p.card.Tags = splitTags(content)
	}
	p.block = nil
}

func (p *mdParser) finishCard() {
	p.flushBlock()
	switch {
	case p.card.Question != "" && p.card.Answer != "":
		p.cards = append(p.cards, p.card)
	case p.card.Question != "" || p.card.Answer != "":
		p.skipped++
	}
	p.card = Card{}
	p.field = mdNone
}

func (p *mdParser) start(field mdField, rest string) {
	p.flushBlock()
	p.field = field
	p.block = append(p.block, strings.TrimPrefix(rest, " "))
}

// ParseMarkdown reads Q:/A: cards. Cards missing either side are skipped.
func ParseMarkdown(data []byte) ([]Card, int, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	p := &mdParser{}
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.TrimSpace(line) == mdSeparator:
			p.finishCard()
		case strings.HasPrefix(line, mdQuestion):
			if p.field != mdNone {
				p.finishCard()
			}
			p.start(mdInQuestion, line[len(mdQuestion):])
		case strings.HasPrefix(line, mdAnswer):
			p.start(mdInAnswer, line[len(mdAnswer):])
		case strings.HasPrefix(line, mdCategory):
			p.start(mdInCategory, line[len(mdCategory):])
		case strings.HasPrefix(line, mdTags):
			p.start(mdInTags, line[len(mdTags):])
		case p.field != mdNone:
			p.block = append(p.block, line)
		}
	}
	p.finishCard()

	if err := scanner.Err(); err != nil {
		return nil, p.skipped, err
	}
	return p.cards, p.skipped, nil
}
