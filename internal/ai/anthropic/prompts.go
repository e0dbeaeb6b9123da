package anthropic

import (
	"fmt"
	"strings"

	"github.com/matt-dz/tidyplan/internal/ai"
)

const systemPrompt = `You are a household task planning assistant. Given a project and its existing tasks, suggest concrete next tasks. Respond with JSON only, no prose, in this shape:
{"suggestions":[{"title":"...","description":"...","priority":"high|medium|low"}]}`

func buildSuggestPrompt(params ai.SuggestParams, maxSuggestions int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s\n", params.ProjectName)
	if params.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", params.Goal)
	}
	if len(params.ExistingTasks) > 0 {
		b.WriteString("Existing tasks:\n")
		for _, task := range params.ExistingTasks {
			fmt.Fprintf(&b, "- %s\n", task)
		}
	}
	fmt.Fprintf(&b, "Suggest up to %d new tasks that are not duplicates of the existing ones.", maxSuggestions)
	return b.String()
}
