// Package parser turns captured Markdown notes into task drafts: frontmatter,
// a title, checklist lines and tags.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	checklistRe = regexp.MustCompile(`^\s*[-*+]\s+\[([ xX])\]\s+(.+)$`)
	headingRe   = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	tagRe       = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
)

// ChecklistLine is one "- [ ] text" line of a note.
type ChecklistLine struct {
	Text string
	Done bool
}

// Result holds the output of parsing a captured note.
type Result struct {
	Frontmatter  map[string]interface{}
	Body         string
	Title        string
	DoneCriteria string
	// TaskID is the frontmatter "task" reference, if any.
	TaskID    *int64
	Checklist []ChecklistLine
	Tags      []string
}

// Parse extracts frontmatter, title, checklist lines and tags from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	taskID, err := frontmatterInt(fm, "task")
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter:  fm,
		Body:         body,
		Title:        deriveTitle(fm, body),
		DoneCriteria: frontmatterString(fm, "done_criteria"),
		TaskID:       taskID,
		Checklist:    extractChecklist(body),
		Tags:         extractTags(body, fm),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		// No closing delimiter: treat everything as body.
		return nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML keeps the whole note as text.
		return nil, string(data), nil
	}

	return fm, body, nil
}

func frontmatterString(fm map[string]interface{}, key string) string {
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func frontmatterInt(fm map[string]interface{}, key string) (*int64, error) {
	raw, ok := fm[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimPrefix(strings.TrimSpace(v), "#"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parser: frontmatter %s: %q is not a task id", key, v)
		}
		n = parsed
	default:
		return nil, fmt.Errorf("parser: frontmatter %s: unsupported value %v", key, raw)
	}
	if n <= 0 {
		return nil, fmt.Errorf("parser: frontmatter %s: %d is not a task id", key, n)
	}
	return &n, nil
}

func extractChecklist(body string) []ChecklistLine {
	var out []ChecklistLine
	for _, line := range strings.Split(body, "\n") {
		m := checklistRe.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		if text == "" {
			continue
		}
		out = append(out, ChecklistLine{Text: text, Done: m[1] != " "})
	}
	return out
}

// extractTags collects #tags from body and from the frontmatter "tags" field.
func extractTags(body string, fm map[string]interface{}) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if list, ok := fm["tags"].([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if headingRe.MatchString(strings.TrimSpace(line)) {
			continue
		}
		for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// heading, otherwise the first plain text line.
func deriveTitle(fm map[string]interface{}, body string) string {
	if s := frontmatterString(fm, "title"); s != "" {
		return s
	}
	var firstText string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if m := headingRe.FindStringSubmatch(trimmed); m != nil {
			return strings.TrimSpace(m[1])
		}
		if firstText == "" && trimmed != "" && !checklistRe.MatchString(trimmed) {
			firstText = trimmed
		}
	}
	return firstText
}
