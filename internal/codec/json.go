package codec

import (
	"encoding/json"
	"fmt"
	"strings"

	"skill-ladder/internal/domain/framework"
)

func ExportJSON(competencies []framework.Competency) ([]byte, error) {
	return json.MarshalIndent(FromFramework(competencies), "", "  ")
}

type jsonDocument struct {
	Competencies *[]jsonCompetency `json:"competencies"`
}

type jsonCompetency struct {
	Title           string              `json:"title"`
	Code            string              `json:"code"`
	Description     string              `json:"description"`
	SubCompetencies []jsonSubCompetency `json:"subCompetencies"`
}

type jsonSubCompetency struct {
	Title         string              `json:"title"`
	Code          string              `json:"code"`
	LevelCriteria map[string][]string `json:"level_criteria"`

	AssociateLevel    []string `json:"associate_level"`
	IntermediateLevel []string `json:"intermediate_level"`
	SeniorLevel       []string `json:"senior_level"`
	LeadLevel         []string `json:"lead_level"`
	PrincipalLevel    []string `json:"principal_level"`
}

// ImportJSON parses the structured form. Legacy per-level arrays are folded
// into level_criteria under their legacy key names; translating them to the
// new scheme is left to the level migration.
func ImportJSON(data []byte) (Document, error) {
	var raw jsonDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, fmt.Errorf("parse structured document: %w", err)
	}
	if raw.Competencies == nil {
		return Document{}, fmt.Errorf("%w: missing competencies array", ErrMalformedInput)
	}
	if len(*raw.Competencies) == 0 {
		return Document{}, fmt.Errorf("%w: no competencies found", ErrMalformedInput)
	}

	doc := Document{Competencies: make([]CompetencyDoc, 0, len(*raw.Competencies))}
	for i, c := range *raw.Competencies {
		title := strings.TrimSpace(c.Title)
		if title == "" {
			return Document{}, fmt.Errorf("%w: competency %d has no title", ErrMalformedInput, i+1)
		}
		cd := CompetencyDoc{
			Title:           title,
			Code:            strings.TrimSpace(c.Code),
			Description:     strings.TrimSpace(c.Description),
			SubCompetencies: make([]SubCompetencyDoc, 0, len(c.SubCompetencies)),
		}
		for j, s := range c.SubCompetencies {
			subTitle := strings.TrimSpace(s.Title)
			if subTitle == "" {
				return Document{}, fmt.Errorf("%w: sub-competency %d.%d has no title", ErrMalformedInput, i+1, j+1)
			}
			cd.SubCompetencies = append(cd.SubCompetencies, SubCompetencyDoc{
				Title:         subTitle,
				Code:          strings.TrimSpace(s.Code),
				LevelCriteria: s.criteria(),
			})
		}
		doc.Competencies = append(doc.Competencies, cd)
	}
	return doc, nil
}

func (s jsonSubCompetency) criteria() map[string][]string {
	if s.LevelCriteria != nil {
		return s.LevelCriteria
	}
	legacy := framework.LegacyFields{
		Associate:    s.AssociateLevel,
		Intermediate: s.IntermediateLevel,
		Senior:       s.SeniorLevel,
		Lead:         s.LeadLevel,
		Principal:    s.PrincipalLevel,
	}
	return map[string][]string(legacy.ToMap())
}
