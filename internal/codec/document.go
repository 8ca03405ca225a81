package codec

import (
	"errors"

	"skill-ladder/internal/domain/framework"
)

// ErrMalformedInput is returned when a document cannot describe a framework.
var ErrMalformedInput = errors.New("malformed framework document")

type Document struct {
	Competencies []CompetencyDoc `json:"competencies"`
}

type CompetencyDoc struct {
	Title           string             `json:"title"`
	Code            string             `json:"code,omitempty"`
	Description     string             `json:"description,omitempty"`
	SubCompetencies []SubCompetencyDoc `json:"subCompetencies"`
}

type SubCompetencyDoc struct {
	Title         string              `json:"title"`
	Code          string              `json:"code,omitempty"`
	LevelCriteria map[string][]string `json:"level_criteria"`
}

// FromFramework dumps the unified maps as stored. Sub-competencies that still
// only carry legacy fields are exported with empty criteria.
func FromFramework(competencies []framework.Competency) Document {
	ordered := framework.SortedCompetencies(competencies)
	doc := Document{Competencies: make([]CompetencyDoc, 0, len(ordered))}
	for _, c := range ordered {
		cd := CompetencyDoc{
			Title:           c.Title,
			Code:            c.Code,
			Description:     c.Description,
			SubCompetencies: make([]SubCompetencyDoc, 0, len(c.SubCompetencies)),
		}
		for _, s := range framework.SortedSubCompetencies(c.SubCompetencies) {
			criteria := make(map[string][]string, len(s.LevelCriteria))
			for k, v := range s.LevelCriteria {
				criteria[k] = append([]string{}, v...)
			}
			cd.SubCompetencies = append(cd.SubCompetencies, SubCompetencyDoc{
				Title:         s.Title,
				Code:          s.Code,
				LevelCriteria: criteria,
			})
		}
		doc.Competencies = append(doc.Competencies, cd)
	}
	return doc
}

// SubCompetencyCount is used for import summaries.
func (d Document) SubCompetencyCount() int {
	n := 0
	for _, c := range d.Competencies {
		n += len(c.SubCompetencies)
	}
	return n
}

// ToCompetencies converts a parsed document into framework records ordered by
// document position. Identifiers are left for the storage layer to assign.
func (d Document) ToCompetencies() []framework.Competency {
	out := make([]framework.Competency, 0, len(d.Competencies))
	for ci, c := range d.Competencies {
		comp := framework.Competency{
			Title:           c.Title,
			Code:            c.Code,
			Description:     c.Description,
			OrderIndex:      ci,
			SubCompetencies: make([]framework.SubCompetency, 0, len(c.SubCompetencies)),
		}
		for si, s := range c.SubCompetencies {
			criteria := framework.UnifiedMap{}
			for k, v := range s.LevelCriteria {
				criteria[k] = append([]string{}, v...)
			}
			comp.SubCompetencies = append(comp.SubCompetencies, framework.SubCompetency{
				Title:         s.Title,
				Code:          s.Code,
				OrderIndex:    si,
				LevelCriteria: criteria,
			})
		}
		out = append(out, comp)
	}
	return out
}
