package codec

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"skill-ladder/internal/domain/level"
)

type parserState int

const (
	stateBeforeCompetency parserState = iota
	stateInCompetencyDescription
	stateInSubCompetency
	stateInLevelBody
)

var (
	competencyNumber    = regexp.MustCompile(`^\d+\.\s*`)
	subCompetencyNumber = regexp.MustCompile(`^\d+\.\d+\.?\s*`)
)

type markdownParser struct {
	levels []level.Level
	state  parserState

	doc      Document
	comp     *CompetencyDoc
	descBuf  []string
	sub      *SubCompetencyDoc
	levelKey string
}

// ImportMarkdown parses the heading-text form in a single pass.
func ImportMarkdown(text string, levels []level.Level) (Document, error) {
	p := &markdownParser{levels: levels, state: stateBeforeCompetency}

	sc := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(text, byteOrderMark)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		p.line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Document{}, fmt.Errorf("read heading document: %w", err)
	}
	p.sealCompetency()

	if len(p.doc.Competencies) == 0 {
		return Document{}, fmt.Errorf("%w: no competencies found", ErrMalformedInput)
	}
	return p.doc, nil
}

func (p *markdownParser) line(raw string) {
	trimmed := strings.TrimSpace(raw)

	if depth, title, ok := heading(trimmed); ok {
		switch depth {
		case 1:
			p.openCompetency(title)
			return
		case 2:
			p.openSubCompetency(title)
			return
		case 3:
			p.openLevel(title)
			return
		}
	}

	switch p.state {
	case stateInCompetencyDescription:
		p.descBuf = append(p.descBuf, strings.TrimRight(raw, " \t"))
	case stateInLevelBody:
		if item, ok := bullet(trimmed); ok {
			p.sub.LevelCriteria[p.levelKey] = append(p.sub.LevelCriteria[p.levelKey], item)
		}
	}
}

func (p *markdownParser) openCompetency(title string) {
	p.sealCompetency()
	title = strings.TrimSpace(competencyNumber.ReplaceAllString(title, ""))
	p.comp = &CompetencyDoc{Title: title, SubCompetencies: []SubCompetencyDoc{}}
	p.descBuf = nil
	p.state = stateInCompetencyDescription
}

func (p *markdownParser) openSubCompetency(title string) {
	if p.state == stateBeforeCompetency {
		return
	}
	p.sealSubCompetency()
	p.sealDescription()
	title = strings.TrimSpace(subCompetencyNumber.ReplaceAllString(title, ""))
	p.sub = &SubCompetencyDoc{Title: title, LevelCriteria: map[string][]string{}}
	p.state = stateInSubCompetency
}

func (p *markdownParser) openLevel(title string) {
	if p.state != stateInSubCompetency && p.state != stateInLevelBody {
		return
	}
	key := ResolveHeading(title, p.levels)
	if key == "" {
		p.state = stateInSubCompetency
		return
	}
	p.levelKey = key
	p.state = stateInLevelBody
}

func (p *markdownParser) sealDescription() {
	if p.comp == nil || p.descBuf == nil {
		return
	}
	p.comp.Description = strings.TrimSpace(strings.Join(p.descBuf, "\n"))
	p.descBuf = nil
}

func (p *markdownParser) sealSubCompetency() {
	if p.comp == nil || p.sub == nil {
		return
	}
	p.comp.SubCompetencies = append(p.comp.SubCompetencies, *p.sub)
	p.sub = nil
	p.levelKey = ""
}

func (p *markdownParser) sealCompetency() {
	if p.comp == nil {
		return
	}
	p.sealSubCompetency()
	p.sealDescription()
	p.doc.Competencies = append(p.doc.Competencies, *p.comp)
	p.comp = nil
	p.state = stateBeforeCompetency
}

// heading reports the depth and text of an ATX heading ("# ", "## ", "### ").
func heading(line string) (int, string, bool) {
	depth := 0
	for depth < len(line) && line[depth] == '#' {
		depth++
	}
	if depth == 0 || depth > 3 {
		return 0, "", false
	}
	rest := line[depth:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	return depth, strings.TrimSpace(rest), true
}

// bullet returns the trimmed item text. A bare marker is an empty criterion.
func bullet(line string) (string, bool) {
	if strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") {
		return strings.TrimSpace(line[2:]), true
	}
	if line == "-" || line == "*" {
		return "", true
	}
	return "", false
}
