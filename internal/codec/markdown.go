package codec

import (
	"fmt"
	"sort"
	"strings"

	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/domain/level"
)

// ExportMarkdown renders the heading-text form. Criteria go through the
// resolver so partially migrated records still export under level labels.
// Levels without criteria are left out.
func ExportMarkdown(competencies []framework.Competency, levels []level.Level) string {
	sortedLevels := level.Sorted(levels)

	var b strings.Builder
	for ci, c := range framework.SortedCompetencies(competencies) {
		if ci > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "# %d. %s\n", ci+1, c.Title)
		if desc := strings.TrimSpace(c.Description); desc != "" {
			b.WriteString("\n")
			b.WriteString(desc)
			b.WriteString("\n")
		}

		for si, s := range framework.SortedSubCompetencies(c.SubCompetencies) {
			fmt.Fprintf(&b, "\n## %d.%d %s\n", ci+1, si+1, s.Title)

			for _, l := range sortedLevels {
				writeLevel(&b, l.Label, framework.Resolve(s, l.Key))
			}
			for _, k := range uncoveredKeys(s.LevelCriteria, sortedLevels) {
				writeLevel(&b, adHocHeading(k, sortedLevels), s.LevelCriteria[k])
			}
		}
	}
	return b.String()
}

func writeLevel(b *strings.Builder, heading string, criteria []string) {
	if len(criteria) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", heading)
	for _, c := range criteria {
		fmt.Fprintf(b, "- %s\n", c)
	}
}

// adHocHeading renders a key no level covers. Keys that heading resolution
// would map elsewhere are wrapped in backticks, which import reads verbatim.
func adHocHeading(key string, levels []level.Level) string {
	if ResolveHeading(key, levels) == key {
		return key
	}
	return "`" + key + "`"
}

// uncoveredKeys returns unified-map keys that no level picks up, directly or
// through the legacy key tables, sorted for stable output.
func uncoveredKeys(m framework.UnifiedMap, levels []level.Level) []string {
	covered := make(map[string]struct{}, len(levels)*2)
	for _, l := range levels {
		covered[l.Key] = struct{}{}
		if mapped, ok := level.MapKey(l.Key); ok {
			covered[mapped] = struct{}{}
		}
	}
	out := make([]string, 0)
	for k, v := range m {
		if len(v) == 0 {
			continue
		}
		if _, ok := covered[k]; ok {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
