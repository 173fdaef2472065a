package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pablasso/taskloop/internal/task"
)

// DecodeGenerateResponse strictly decodes a {"response": [...]} body. A
// missing, null or non-array response is ErrMalformedResponse rather than an
// empty queue.
func DecodeGenerateResponse(data []byte) (GenerateResponse, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return GenerateResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	raw, ok := envelope["response"]
	if !ok {
		return GenerateResponse{}, fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}

	tasks, err := decodeTaskArray(raw)
	if err != nil {
		return GenerateResponse{}, err
	}
	return GenerateResponse{Response: tasks}, nil
}

// DecodeExecuteResponse decodes a {"response": "..."} body.
func DecodeExecuteResponse(data []byte) (ExecuteResponse, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ExecuteResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	raw, ok := envelope["response"]
	if !ok {
		return ExecuteResponse{}, fmt.Errorf("%w: missing response field", ErrMalformedResponse)
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ExecuteResponse{}, fmt.Errorf("%w: response is not a string", ErrMalformedResponse)
	}
	return ExecuteResponse{Response: text}, nil
}

// ParseTaskList extracts a JSON task array from model output that may be
// wrapped in markdown fences or surrounded by prose.
func ParseTaskList(output string) ([]task.Task, error) {
	str := stripMarkdownCodeBlocks(output)

	if json.Valid([]byte(str)) {
		return decodeTaskArray([]byte(str))
	}

	// Try each '[' in turn; brackets in surrounding prose are skipped.
	var empty []task.Task
	for i := strings.IndexByte(str, '['); i != -1; {
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(str[i:])).Decode(&raw); err == nil {
			if tasks, err := decodeTaskArray(raw); err == nil {
				if len(tasks) > 0 {
					return tasks, nil
				}
				if empty == nil {
					empty = tasks
				}
			}
		}
		next := strings.IndexByte(str[i+1:], '[')
		if next == -1 {
			break
		}
		i += next + 1
	}
	if empty != nil {
		return empty, nil
	}
	return nil, fmt.Errorf("%w: no JSON task array found in model output", ErrMalformedResponse)
}

func decodeTaskArray(raw json.RawMessage) ([]task.Task, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: response is not a task array", ErrMalformedResponse)
	}

	var tasks []task.Task
	if err := json.Unmarshal(trimmed, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	for i := range tasks {
		tasks[i] = tasks[i].Normalize()
	}
	return tasks, nil
}

// stripMarkdownCodeBlocks removes markdown code block markers from a string.
func stripMarkdownCodeBlocks(s string) string {
	s = strings.TrimSpace(s)
	if cut, found := strings.CutPrefix(s, "```json"); found {
		s = cut
	} else if cut, found := strings.CutPrefix(s, "```"); found {
		s = cut
	}
	if cut, found := strings.CutSuffix(s, "```"); found {
		s = cut
	}
	return strings.TrimSpace(s)
}

// IsMalformed reports whether err stems from an unusable gateway response.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}
