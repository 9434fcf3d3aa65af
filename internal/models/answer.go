// Package models defines data structures for FinSight
package models

import (
	"fmt"
	"strings"
	"time"
)

// BlockedChartMessage is the fixed user-facing message emitted whenever the
// output guard blocks a chart request. The exact string is a contract
// surface for the UI layer — do not reword it.
const BlockedChartMessage = "No structured numerical data available to generate a chart."

// Intent is the caller's declared desired output shape. It is derived once
// per request and threaded through every downstream stage.
type Intent int

const (
	IntentNone Intent = iota
	IntentChart
	IntentTable
)

// String returns the lowercase label for the intent.
func (i Intent) String() string {
	switch i {
	case IntentChart:
		return "chart"
	case IntentTable:
		return "table"
	default:
		return "none"
	}
}

// Chart types supported by ChartSpec.
const (
	ChartTypeBar        = "bar"
	ChartTypeLine       = "line"
	ChartTypePie        = "pie"
	ChartTypeStackedBar = "stacked_bar"
)

// ChartSpec is a fully-typed visualization object ready for rendering.
// Invariant: len(Labels) == len(Values) >= 2.
type ChartSpec struct {
	Type   string    `json:"type"`
	Title  string    `json:"title"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
	XAxis  string    `json:"xAxis"`
	YAxis  string    `json:"yAxis"`
}

// Valid reports whether the spec satisfies the chart shape invariant.
func (c *ChartSpec) Valid() bool {
	if c == nil {
		return false
	}
	switch c.Type {
	case ChartTypeBar, ChartTypeLine, ChartTypePie, ChartTypeStackedBar:
	default:
		return false
	}
	return len(c.Labels) == len(c.Values) && len(c.Values) >= 2
}

// TableSpec is a headers/rows table object. Invariant: every row has
// exactly len(Headers) cells.
type TableSpec struct {
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	Markdown string     `json:"markdown,omitempty"`
}

// RenderMarkdown produces a GitHub-style markdown table and stores it on
// the spec.
func (t *TableSpec) RenderMarkdown() string {
	if t == nil || len(t.Headers) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("| ")
	sb.WriteString(strings.Join(t.Headers, " | "))
	sb.WriteString(" |\n|")
	for range t.Headers {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		sb.WriteString("| ")
		sb.WriteString(strings.Join(row, " | "))
		sb.WriteString(" |\n")
	}

	t.Markdown = sb.String()
	return t.Markdown
}

// ChatTurn is one prior exchange in a conversation.
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// AnswerEnvelope is the unified response for a question. Chart and Table
// are mutually exclusive; omission of both is a valid plain-text answer.
type AnswerEnvelope struct {
	Answer      string     `json:"answer"`
	Chart       *ChartSpec `json:"chart,omitempty"`
	Table       *TableSpec `json:"table,omitempty"`
	Intent      string     `json:"intent"`
	ChatHistory []ChatTurn `json:"chat_history,omitempty"`
}

// Coherent reports whether the envelope satisfies the intent/shape
// coherence property: never both chart and table.
func (e *AnswerEnvelope) Coherent() error {
	if e.Chart != nil && e.Table != nil {
		return fmt.Errorf("envelope carries both chart and table")
	}
	return nil
}

// AnswerRecord is one logged question/answer exchange.
type AnswerRecord struct {
	ID        string    `badgerhold:"key" json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Intent    string    `json:"intent"`
	Blocked   bool      `json:"blocked,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
