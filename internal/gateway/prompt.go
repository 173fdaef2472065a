package gateway

import (
	"fmt"
	"strings"

	"github.com/pablasso/taskloop/internal/task"
)

// Prompt is a system/user message pair sent to a chat model.
type Prompt struct {
	System string
	User   string
}

// Combined joins both messages for backends that accept a single prompt.
func (p Prompt) Combined() string {
	return p.System + "\n\n" + p.User
}

// ExecutePrompt builds the single-task instruction. language may be empty.
func ExecutePrompt(req ExecuteRequest, language string) Prompt {
	system := fmt.Sprintf("You are an AI who performs one task based on the following objective: %s.", req.Objective)
	system += " Perform exactly one task and restrict your answer to that task."
	system += languageSuffix(language)

	return Prompt{
		System: system,
		User:   fmt.Sprintf("Your task: %s. Response:", req.Task),
	}
}

// GeneratePrompt builds the task creation and prioritization instruction.
func GeneratePrompt(req GenerateRequest, language string) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a task creation and prioritization AI.\n")
	sb.WriteString(fmt.Sprintf("The ultimate objective is: %s\n\n", req.Objective))
	sb.WriteString("Return the complete, reprioritized list of tasks that still need to be done ")
	sb.WriteString("as a JSON array. The array replaces the current list entirely. ")
	sb.WriteString("Return an empty array [] when the objective has been achieved.\n\n")
	sb.WriteString("OUTPUT REQUIREMENTS:\n")
	sb.WriteString(`[{"taskID": "2", "taskName": "Short imperative description"}]` + "\n")
	sb.WriteString("- taskID values are unique strings and must not reuse the id of the last completed task\n")
	sb.WriteString("- Order the array by execution priority, first task first\n")
	sb.WriteString("- Do not repeat work already covered by the last result\n")
	sb.WriteString("Return ONLY the JSON array, no markdown formatting or explanation.")
	sb.WriteString(languageSuffix(language))

	var user strings.Builder
	user.WriteString(fmt.Sprintf("Last completed task: %s\n", req.Task))
	user.WriteString(fmt.Sprintf("Result of that task:\n%s\n\n", req.Result))
	if len(req.TaskList) == 0 {
		user.WriteString("Incomplete tasks: none\n")
	} else {
		user.WriteString("Incomplete tasks:\n")
		user.WriteString(task.NewQueue(req.TaskList...).Format())
		user.WriteString("\n")
	}
	user.WriteString("New task list:")

	return Prompt{System: sb.String(), User: user.String()}
}

func languageSuffix(language string) string {
	language = strings.TrimSpace(language)
	if language == "" {
		return ""
	}
	return fmt.Sprintf(" Please answer in %s.", language)
}
