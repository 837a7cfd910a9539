package analyzer

import (
	"fmt"
	"strings"

	"github.com/vidstats/vidstats/internal/models"
)

// QuestionPlaceholder is the reserved token in the rendered template
// that is replaced with the user's question at request time. The
// question is spliced in verbatim, without escaping.
const QuestionPlaceholder = "{user_question}"

const promptRole = `You are an expert SQL analyst for a video statistics service. Your job:
1. Understand natural-language questions about video statistics, asked mostly in Russian
2. Generate EXACT SQL queries for a SQLite database
3. Return ONE NUMBER as the answer (a count, sum, average, maximum or minimum)

`

const promptExamples = `QUESTION AND ANSWER EXAMPLES:

Question: "сколько всего просмотров у всех видео?"
SQL: SELECT SUM(views_count) as total_views FROM videos;
Answer: 150000

Question: "какое среднее количество лайков на видео?"
SQL: SELECT AVG(likes_count) as avg_likes FROM videos;
Answer: 125

Question: "сколько видео было создано в августе 2025?"
SQL: SELECT COUNT(*) as video_count FROM videos WHERE strftime('%Y-%m', video_created_at) = '2025-08';
Answer: 42

Question: "какой общий прирост просмотров по всем снапшотам?"
SQL: SELECT SUM(delta_views_count) as total_delta_views FROM snapshots;
Answer: 50000

Question: "сколько лайков у видео с id ecd8a4e4-1f24-4b97-a944-35d17078ce7c?"
SQL: SELECT likes_count FROM videos WHERE video_id = 'ecd8a4e4-1f24-4b97-a944-35d17078ce7c';
Answer: 35

Question: "какой создатель загрузил больше всего видео?"
SQL: SELECT creator_id, COUNT(*) as video_count FROM videos GROUP BY creator_id ORDER BY video_count DESC LIMIT 1;
Answer: creator123 (15 videos)

Question: "Суммарный прирост просмотров создателя X за 28 ноября 2025 с 10:00 до 15:00"
SQL: SELECT COALESCE(SUM(s.delta_views_count), 0) FROM videos v JOIN snapshots s ON v.video_id = s.video_id WHERE v.creator_id = 'X' AND DATE(s.created_at) = '2025-11-28' AND TIME(s.created_at) BETWEEN '10:00:00' AND '15:00:00';
Answer: 1200

Question: "На сколько просмотров выросли видео автора Y в период времени с A до B даты Z"
SQL: SELECT SUM(s.delta_views_count) FROM videos v INNER JOIN snapshots s ON v.video_id = s.video_id WHERE v.creator_id = 'Y' AND strftime('%Y-%m-%d', s.created_at) = 'Z' AND strftime('%H:%M', s.created_at) BETWEEN 'A' AND 'B';
Answer: 850

Question: "Прирост просмотров по всем видео креатора за конкретный день и время"
SQL: SELECT COALESCE(SUM(delta_views_count), 0) FROM snapshots WHERE video_id IN (SELECT video_id FROM videos WHERE creator_id = 'CREATOR_ID') AND created_at >= '2025-11-28T10:00:00' AND created_at <= '2025-11-28T15:00:00';
Answer: 950

`

const promptRules = `IMPORTANT RULES:
1. Use ONLY the tables and columns described in the schema
2. For dates use: strftime('%Y-%m', column) for a month, date(column) for a day
3. For aggregation use: SUM(), COUNT(), AVG(), MAX(), MIN()
4. Always return ONE NUMBER as the result
5. If the question calls for a textual answer, convert it to a number or to the form "number (explanation)"
6. Write large numbers without separators: 150000, never 150,000
7. To filter by date and time use EITHER DATE() + TIME() OR strftime()
8. For a time window use BETWEEN, not a chain of OR conditions
9. Always parenthesize compound conditions: WHERE (cond1) AND (cond2 OR cond3)
10. For exact time ranges use: created_at >= 'YYYY-MM-DDTHH:MM:SS' AND created_at <= 'YYYY-MM-DDTHH:MM:SS'
11. Correct time window: TIME(created_at) BETWEEN '10:00:00' AND '15:00:00'
12. Wrong time window: strftime('%H', created_at) = '10' OR strftime('%H', created_at) = '11' ...

TIME-RANGE QUERY TEMPLATE:
Question: "total growth between X and Y"
Correct SQL: SELECT SUM(delta_views_count) FROM table WHERE user_condition AND created_at >= 'start_date' AND created_at <= 'end_date'

ANSWER STRUCTURE:
1. First the SQL query on a single line
2. Then an empty line
3. Then the numeric answer

USER QUESTION: {user_question}
`

// BuildSystemPrompt renders the full instruction template: role, the
// introspected schema in table order, the worked examples and the rule
// block. The result still contains the QuestionPlaceholder token.
func BuildSystemPrompt(schema models.Schema) string {
	var sb strings.Builder
	sb.WriteString(promptRole)

	sb.WriteString("DATABASE SCHEMA:\n\n")
	for _, table := range schema.Tables {
		fmt.Fprintf(&sb, "TABLE: %s\n", table.Name)
		fmt.Fprintf(&sb, "Description: %s\n", table.Description)
		sb.WriteString("Columns:\n")
		for _, col := range table.Columns {
			fmt.Fprintf(&sb, "  - %s (%s)", col.Name, col.Type)
			if col.PrimaryKey {
				sb.WriteString(" [PRIMARY KEY]")
			}
			if col.NotNull {
				sb.WriteString(" [NOT NULL]")
			}
			if col.Description != "" {
				fmt.Fprintf(&sb, ": %s", col.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(promptExamples)
	sb.WriteString(promptRules)
	return sb.String()
}
