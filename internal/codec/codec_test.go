package codec

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"skill-ladder/internal/domain/framework"
	"skill-ladder/internal/domain/level"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func icLevels(t *testing.T) []level.Level {
	t.Helper()
	levels, err := level.DefaultLevels(level.RoleTypeIC)
	require.NoError(t, err)
	return levels
}

func sampleFramework() []framework.Competency {
	return []framework.Competency{
		{
			Title:       "Collaboration",
			Description: "Working with others.\n\nAcross teams too.",
			OrderIndex:  1,
			SubCompetencies: []framework.SubCompetency{
				{
					Title:         "Feedback",
					OrderIndex:    0,
					LevelCriteria: framework.UnifiedMap{"p2_developing": {"Asks for feedback"}},
				},
			},
		},
		{
			Title:      "Technical Skills",
			OrderIndex: 0,
			SubCompetencies: []framework.SubCompetency{
				{
					Title:      "Testing",
					OrderIndex: 1,
					LevelCriteria: framework.UnifiedMap{
						"p5_principal": {"Defines the test strategy"},
						"p1_entry":     {"Writes unit tests", "Runs the suite before pushing"},
					},
				},
				{
					Title:      "Code Review",
					OrderIndex: 0,
					LevelCriteria: framework.UnifiedMap{
						"p3_career":    {"Reviews for design"},
						"stretch_goal": {"Mentors reviewers"},
					},
				},
			},
		},
	}
}

func TestMarkdown_RoundTrip(t *testing.T) {
	levels := icLevels(t)
	fw := sampleFramework()

	text := ExportMarkdown(fw, levels)
	doc, err := ImportMarkdown(text, levels)
	require.NoError(t, err)

	if diff := cmp.Diff(FromFramework(fw), doc); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdown_ExportShape(t *testing.T) {
	text := ExportMarkdown(sampleFramework(), icLevels(t))

	assert.True(t, strings.HasPrefix(text, "# 1. Technical Skills\n"))
	assert.Contains(t, text, "## 1.1 Code Review\n")
	assert.Contains(t, text, "## 1.2 Testing\n")
	assert.Contains(t, text, "# 2. Collaboration\n\nWorking with others.")
	assert.Contains(t, text, "### P3 Career\n\n- Reviews for design\n")
	assert.Contains(t, text, "### stretch_goal\n")
	assert.NotContains(t, text, "### P2 Developing\n\n- Writes")

	entry := strings.Index(text, "### P1 Entry")
	principal := strings.Index(text, "### P5 Principal")
	require.True(t, entry >= 0 && principal >= 0)
	assert.Less(t, entry, principal)
}

func TestMarkdown_RoundTripAdHocKeys(t *testing.T) {
	levels := icLevels(t)
	fw := []framework.Competency{{
		Title: "Delivery",
		SubCompetencies: []framework.SubCompetency{{
			Title: "Ownership",
			LevelCriteria: framework.UnifiedMap{
				"p3_career":    {"core"},
				"staff_p3":     {"stretch"},
				"Staff":        {"capitalised"},
				"big goal":     {"spaced"},
				"stretch_goal": {"plain"},
			},
		}},
	}}

	text := ExportMarkdown(fw, levels)
	assert.Contains(t, text, "### `staff_p3`\n")
	assert.Contains(t, text, "### `Staff`\n")
	assert.Contains(t, text, "### `big goal`\n")
	assert.Contains(t, text, "### stretch_goal\n")

	doc, err := ImportMarkdown(text, levels)
	require.NoError(t, err)
	if diff := cmp.Diff(FromFramework(fw), doc); diff != "" {
		t.Fatalf("ad-hoc keys changed (-want +got):\n%s", diff)
	}
}

func TestMarkdown_RoundTripEmptyCriterion(t *testing.T) {
	levels := icLevels(t)
	fw := []framework.Competency{{
		Title: "Delivery",
		SubCompetencies: []framework.SubCompetency{{
			Title:         "Planning",
			LevelCriteria: framework.UnifiedMap{"p1_entry": {"", "Estimates tasks", ""}},
		}},
	}}

	doc, err := ImportMarkdown(ExportMarkdown(fw, levels), levels)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Estimates tasks", ""}, doc.Competencies[0].SubCompetencies[0].LevelCriteria["p1_entry"])
}

func TestMarkdown_ExportUsesResolverForLegacyOnly(t *testing.T) {
	fw := []framework.Competency{{
		Title: "Delivery",
		SubCompetencies: []framework.SubCompetency{{
			Title:  "Planning",
			Legacy: framework.LegacyFields{Senior: []string{"Plans a quarter"}},
		}},
	}}
	text := ExportMarkdown(fw, icLevels(t))
	assert.Contains(t, text, "### P3 Career\n\n- Plans a quarter\n")
	assert.NotContains(t, text, "### P1 Entry")
}

func TestImportMarkdown_StateMachine(t *testing.T) {
	text := `Preamble that is not part of any competency.

## Orphan sub-competency before any competency

# 1. Communication

Clear writing
and speaking.

## 1.1 Writing

Some free text under a sub-competency is ignored.

### P2 Developing

- Writes clear docs
* Edits others' docs
-

### Associate

- Writes notes

#### deeper heading is plain text

## 1.2 Speaking

### Senior Staff

- Presents to the org

# Leadership

## Vision
`
	doc, err := ImportMarkdown(text, icLevels(t))
	require.NoError(t, err)
	require.Len(t, doc.Competencies, 2)

	comm := doc.Competencies[0]
	assert.Equal(t, "Communication", comm.Title)
	assert.Equal(t, "Clear writing\nand speaking.", comm.Description)
	require.Len(t, comm.SubCompetencies, 2)

	writing := comm.SubCompetencies[0]
	assert.Equal(t, "Writing", writing.Title)
	assert.Equal(t, map[string][]string{
		"p2_developing": {"Writes clear docs", "Edits others' docs", ""},
		"p1_entry":      {"Writes notes"},
	}, writing.LevelCriteria)

	speaking := comm.SubCompetencies[1]
	assert.Equal(t, "Speaking", speaking.Title)
	assert.Equal(t, map[string][]string{"senior_staff": {"Presents to the org"}}, speaking.LevelCriteria)

	lead := doc.Competencies[1]
	assert.Equal(t, "Leadership", lead.Title)
	assert.Empty(t, lead.Description)
	require.Len(t, lead.SubCompetencies, 1)
	assert.Empty(t, lead.SubCompetencies[0].LevelCriteria)
}

func TestImportMarkdown_NoCompetencies(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "just text\n## 1.1 orphan\n### P1 Entry\n- x\n"} {
		_, err := ImportMarkdown(text, icLevels(t))
		assert.True(t, errors.Is(err, ErrMalformedInput), "input %q", text)
	}
}

func TestResolveHeading(t *testing.T) {
	ic := icLevels(t)
	mgmt, err := level.DefaultLevels(level.RoleTypeManagement)
	require.NoError(t, err)

	tests := []struct {
		heading string
		levels  []level.Level
		want    string
	}{
		{"P2 Developing", ic, "p2_developing"},
		{"p2 developing", ic, "p2_developing"},
		{"p4_advanced", ic, "p4_advanced"},
		{"P1", ic, "p1_entry"},
		{"Associate", ic, "p1_entry"},
		{"PRINCIPAL", ic, "p5_principal"},
		{"Lead", mgmt, "p4_advanced"},
		{"P3 Career (Senior)", ic, "p3_career"},
		{"Career", ic, "p3_career"},
		{"M2", mgmt, "m2_senior_manager"},
		{"Director", mgmt, "m3_director"},
		{"Extra   Stretch Level", ic, "extra_stretch_level"},
		{"   ", ic, ""},
		{"`staff_p3`", ic, "staff_p3"},
		{" `Big Goal` ", ic, "Big Goal"},
		{"``", ic, "``"},
		{"`a`b`", ic, "`a`b`"},
	}
	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveHeading(tt.heading, tt.levels))
		})
	}
}

func TestExportJSON(t *testing.T) {
	fw := sampleFramework()
	fw[1].SubCompetencies = append(fw[1].SubCompetencies, framework.SubCompetency{
		Title:      "Legacy only",
		OrderIndex: 2,
		Legacy:     framework.LegacyFields{Associate: []string{"kept in legacy column"}},
	})

	raw, err := ExportJSON(fw)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	comps := out["competencies"].([]any)
	require.Len(t, comps, 2)
	first := comps[0].(map[string]any)
	assert.Equal(t, "Technical Skills", first["title"])
	subs := first["subCompetencies"].([]any)
	require.Len(t, subs, 3)
	legacyOnly := subs[2].(map[string]any)
	assert.Equal(t, map[string]any{}, legacyOnly["level_criteria"])
}

func TestJSON_RoundTrip(t *testing.T) {
	fw := sampleFramework()
	fw[0].Code = "COL"
	raw, err := ExportJSON(fw)
	require.NoError(t, err)

	doc, err := ImportJSON(raw)
	require.NoError(t, err)
	if diff := cmp.Diff(FromFramework(fw), doc); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestImportJSON_LegacyFields(t *testing.T) {
	raw := `{"competencies":[{"title":"Craft","subCompetencies":[
		{"title":"Debugging","associate_level":["Reads stack traces"],"senior_level":["Finds root causes"],"lead_level":[]},
		{"title":"Design","level_criteria":{"p3_career":["Designs services"]},"associate_level":["ignored"]}
	]}]}`

	doc, err := ImportJSON([]byte(raw))
	require.NoError(t, err)
	subs := doc.Competencies[0].SubCompetencies
	require.Len(t, subs, 2)
	assert.Equal(t, map[string][]string{
		"associate": {"Reads stack traces"},
		"senior":    {"Finds root causes"},
	}, subs[0].LevelCriteria)
	assert.Equal(t, map[string][]string{"p3_career": {"Designs services"}}, subs[1].LevelCriteria)
}

func TestImportJSON_Errors(t *testing.T) {
	_, err := ImportJSON([]byte(`{"title":"no array"}`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = ImportJSON([]byte(`{"competencies":[]}`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = ImportJSON([]byte(`{"competencies":[{"title":"  "}]}`))
	assert.ErrorIs(t, err, ErrMalformedInput)

	_, err = ImportJSON([]byte(`{"competencies": [`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrMalformedInput))

	_, err = ImportJSON([]byte(`[{"title":"x"}]`))
	require.Error(t, err)
}

func TestDetectFormatAndParse(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("  \n{\"competencies\":[]}"))
	assert.Equal(t, FormatJSON, DetectFormat("[1,2]"))
	assert.Equal(t, FormatMarkdown, DetectFormat("# 1. Title"))
	assert.Equal(t, FormatMarkdown, DetectFormat(""))

	doc, format, err := Parse("# Title\n## Sub\n### P1 Entry\n- a\n", icLevels(t))
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, format)
	assert.Equal(t, []string{"a"}, doc.Competencies[0].SubCompetencies[0].LevelCriteria["p1_entry"])

	_, format, err = Parse("{ broken", icLevels(t))
	assert.Equal(t, FormatJSON, format)
	assert.Error(t, err)
}

func TestParse_StripsByteOrderMark(t *testing.T) {
	md := "\ufeff# 1. First\n## 1.1 A\n### P1 Entry\n- x\n# 2. Second\n## 2.1 B\n### P2 Developing\n- y\n"
	doc, format, err := Parse(md, icLevels(t))
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, format)
	require.Len(t, doc.Competencies, 2)
	assert.Equal(t, "First", doc.Competencies[0].Title)
	assert.Equal(t, []string{"y"}, doc.Competencies[1].SubCompetencies[0].LevelCriteria["p2_developing"])

	direct, err := ImportMarkdown(md, icLevels(t))
	require.NoError(t, err)
	assert.Equal(t, doc, direct)

	js := "\ufeff" + `{"competencies":[{"title":"Only","subCompetencies":[{"title":"S","level_criteria":{"p1_entry":["z"]}}]}]}`
	doc, format, err = Parse(js, icLevels(t))
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)
	require.Len(t, doc.Competencies, 1)
	assert.Equal(t, []string{"z"}, doc.Competencies[0].SubCompetencies[0].LevelCriteria["p1_entry"])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("MD")
	require.NoError(t, err)
	assert.Equal(t, FormatMarkdown, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("yaml")
	assert.Error(t, err)
}

func TestDocument_ToCompetencies(t *testing.T) {
	doc := FromFramework(sampleFramework())
	comps := doc.ToCompetencies()
	require.Len(t, comps, 2)
	assert.Equal(t, "Technical Skills", comps[0].Title)
	assert.Equal(t, 0, comps[0].OrderIndex)
	assert.Equal(t, 1, comps[0].SubCompetencies[1].OrderIndex)
	assert.Equal(t, "Testing", comps[0].SubCompetencies[1].Title)
	assert.Equal(t, 3, doc.SubCompetencyCount())
}
