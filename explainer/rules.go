package explainer

import (
	_ "embed"
	"strings"
	"sync"

	"github.com/lmorris/morrisbot/board"
)

//go:embed rules_prompt.md
var rulesTemplate string

// StandardRules is DescribeRules for the standard board, built once.
var StandardRules = sync.OnceValue(func() string {
	return DescribeRules(board.Standard(), board.LaskerMorrisMills)
})

// DescribeRules explains Lasker Morris in plain language, including one
// "<p> is adjacent to <n1>, <n2>. " clause per position of t, in t's order.
func DescribeRules(t *board.Table, mills []board.Mill) string {
	prompt := strings.TrimSpace(rulesTemplate)
	prompt = strings.ReplaceAll(prompt, "{adjacency}", describeAdjacency(t))
	prompt = strings.ReplaceAll(prompt, "{mills}", describeMills(mills))
	return prompt
}

func describeAdjacency(t *board.Table) string {
	var sb strings.Builder
	for _, p := range t.Positions() {
		ns := t.Neighbors(p)
		sb.WriteString(string(p))
		if len(ns) == 0 {
			sb.WriteString(" is adjacent to no other space. ")
			continue
		}
		sb.WriteString(" is adjacent to ")
		for i, n := range ns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(string(n))
		}
		sb.WriteString(". ")
	}
	return sb.String()
}

func describeMills(mills []board.Mill) string {
	if len(mills) == 0 {
		return "none"
	}
	lines := make([]string, len(mills))
	for i, m := range mills {
		lines[i] = string(m[0]) + "-" + string(m[1]) + "-" + string(m[2])
	}
	return strings.Join(lines, ", ")
}
