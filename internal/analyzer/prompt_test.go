package analyzer_test

import (
	"strings"
	"testing"

	"github.com/vidstats/vidstats/internal/analyzer"
	"github.com/vidstats/vidstats/internal/models"
)

func promptSchema() models.Schema {
	return models.Schema{Tables: []models.TableInfo{{
		Name:        "videos",
		Description: "primary table of videos",
		Columns: []models.ColumnInfo{
			{Name: "video_id", Type: "TEXT", PrimaryKey: true, NotNull: true, Description: "unique video identifier"},
			{Name: "views_count", Type: "INTEGER", Description: "total number of views"},
		},
		RowCount:   987654,
		SampleRows: []map[string]any{{"video_id": "zz-sample-sentinel"}},
	}}}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := analyzer.BuildSystemPrompt(promptSchema())

	for _, want := range []string{
		"DATABASE SCHEMA:",
		"TABLE: videos",
		"Description: primary table of videos",
		"- video_id (TEXT) [PRIMARY KEY] [NOT NULL]: unique video identifier",
		"- views_count (INTEGER): total number of views",
		`Question: "сколько всего просмотров у всех видео?"`,
		"IMPORTANT RULES:",
		"USER QUESTION: {user_question}",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt is missing %q", want)
		}
	}

	if n := strings.Count(prompt, analyzer.QuestionPlaceholder); n != 1 {
		t.Errorf("placeholder occurs %d times, want exactly 1", n)
	}
}

func TestPromptOmitsStatistics(t *testing.T) {
	prompt := analyzer.BuildSystemPrompt(promptSchema())

	// Row counts and sample rows feed operator surfaces, not the model.
	if strings.Contains(prompt, "987654") {
		t.Error("row counts must not be rendered into the prompt")
	}
	if strings.Contains(prompt, "zz-sample-sentinel") {
		t.Error("sample rows must not be rendered into the prompt")
	}
}

func TestPromptDeterministic(t *testing.T) {
	schema := promptSchema()
	if analyzer.BuildSystemPrompt(schema) != analyzer.BuildSystemPrompt(schema) {
		t.Error("prompt rendering should be deterministic")
	}
}

func TestPromptEmptySchema(t *testing.T) {
	prompt := analyzer.BuildSystemPrompt(models.Schema{Tables: []models.TableInfo{}})

	if !strings.Contains(prompt, "DATABASE SCHEMA:") {
		t.Error("empty schema still renders the schema header")
	}
	if !strings.Contains(prompt, analyzer.QuestionPlaceholder) {
		t.Error("empty schema still renders the question placeholder")
	}
}
