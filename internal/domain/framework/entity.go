package framework

import (
	"sort"
	"time"

	"skill-ladder/internal/domain/level"

	"github.com/google/uuid"
)

type Role struct {
	ID        uuid.UUID
	Name      string
	Type      level.RoleType
	CreatedAt time.Time
}

type Competency struct {
	ID              uuid.UUID
	RoleID          uuid.UUID
	Title           string
	Code            string
	Description     string
	OrderIndex      int
	SubCompetencies []SubCompetency
}

// SubCompetency may carry criteria in the unified map, the legacy fields,
// both (mid-migration) or neither.
type SubCompetency struct {
	ID            uuid.UUID
	CompetencyID  uuid.UUID
	Title         string
	Code          string
	OrderIndex    int
	LevelCriteria UnifiedMap
	Legacy        LegacyFields
}

// Sources lists the criteria representations present on the record, unified first.
func (s SubCompetency) Sources() []CriteriaSource {
	out := make([]CriteriaSource, 0, 2)
	if s.LevelCriteria != nil {
		out = append(out, s.LevelCriteria)
	}
	if !s.Legacy.IsEmpty() {
		out = append(out, s.Legacy)
	}
	return out
}

// SortedCompetencies returns a copy ordered by OrderIndex, keeping input order for ties.
func SortedCompetencies(in []Competency) []Competency {
	out := make([]Competency, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}

func SortedSubCompetencies(in []SubCompetency) []SubCompetency {
	out := make([]SubCompetency, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out
}
