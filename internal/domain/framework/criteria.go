package framework

import (
	"bytes"
	"encoding/json"
	"fmt"

	"skill-ladder/internal/domain/level"
)

// CriteriaSource is either a UnifiedMap or LegacyFields.
type CriteriaSource interface {
	isCriteriaSource()
}

// UnifiedMap is the current per-level-key storage shape.
type UnifiedMap map[string][]string

func (UnifiedMap) isCriteriaSource() {}

func (m UnifiedMap) HasLegacyKeys() bool {
	for k := range m {
		if level.IsLegacyKey(k) {
			return true
		}
	}
	return false
}

// Translated rewrites legacy keys to their new-scheme equivalents. Other keys
// are carried over unchanged. When a legacy key and its new-scheme key are both
// present, the new-scheme entry wins and the legacy entry is dropped.
func (m UnifiedMap) Translated() UnifiedMap {
	out := make(UnifiedMap, len(m))
	for k, v := range m {
		if level.IsLegacyKey(k) {
			continue
		}
		out[k] = clone(v)
	}
	for k, v := range m {
		newKey, ok := level.LegacyToNew(k)
		if !ok {
			continue
		}
		if _, exists := out[newKey]; exists {
			continue
		}
		out[newKey] = clone(v)
	}
	return out
}

// LegacyFields are the five fixed columns that predate the unified map.
// They are kept as historical residue and never written after migration.
type LegacyFields struct {
	Associate    []string
	Intermediate []string
	Senior       []string
	Lead         []string
	Principal    []string
}

func (LegacyFields) isCriteriaSource() {}

func (f LegacyFields) Get(legacyKey string) []string {
	switch legacyKey {
	case level.LegacyAssociate:
		return f.Associate
	case level.LegacyIntermediate:
		return f.Intermediate
	case level.LegacySenior:
		return f.Senior
	case level.LegacyLead:
		return f.Lead
	case level.LegacyPrincipal:
		return f.Principal
	default:
		return nil
	}
}

func (f LegacyFields) IsEmpty() bool {
	for _, k := range level.LegacyKeys() {
		if len(f.Get(k)) > 0 {
			return false
		}
	}
	return true
}

// ToMap copies every non-empty field under its legacy key name.
func (f LegacyFields) ToMap() UnifiedMap {
	out := UnifiedMap{}
	for _, k := range level.LegacyKeys() {
		if v := f.Get(k); len(v) > 0 {
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

// Resolve returns the criteria for levelKey, trying the exact key and then the
// key mapped through the legacy tables against each source in turn. It never
// fails; a miss yields an empty list.
func Resolve(sub SubCompetency, levelKey string) []string {
	mapped, hasMapped := level.MapKey(levelKey)

	for _, src := range sub.Sources() {
		switch s := src.(type) {
		case UnifiedMap:
			if v := s[levelKey]; len(v) > 0 {
				return clone(v)
			}
			if hasMapped {
				if v := s[mapped]; len(v) > 0 {
					return clone(v)
				}
			}
		case LegacyFields:
			if v := s.Get(levelKey); len(v) > 0 {
				return clone(v)
			}
			if hasMapped {
				if v := s.Get(mapped); len(v) > 0 {
					return clone(v)
				}
			}
		}
	}
	return []string{}
}

func clone(v []string) []string {
	return append([]string(nil), v...)
}

// DecodeLevelCriteria decodes a stored JSON map. Empty input and JSON null
// both mean the record has no unified map yet.
func DecodeLevelCriteria(raw []byte) (UnifiedMap, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var m map[string][]string
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, fmt.Errorf("decode level_criteria: %w", err)
	}
	if m == nil {
		m = map[string][]string{}
	}
	return UnifiedMap(m), nil
}

func EncodeLevelCriteria(m UnifiedMap) ([]byte, error) {
	if m == nil {
		m = UnifiedMap{}
	}
	return json.Marshal(map[string][]string(m))
}
