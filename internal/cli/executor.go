package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", s)
	}
}

// ExecutorOptions contains options for tool execution
type ExecutorOptions struct {
	Format OutputFormat
	Quiet  bool
	// Out and ErrOut default to os.Stdout and os.Stderr.
	Out    io.Writer
	ErrOut io.Writer
}

// ToolError is a failed tool result. Message is the tool's text unchanged.
type ToolError struct {
	Tool    string
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

// ToolExecutor calls a tool and renders its result
type ToolExecutor struct {
	caller  ToolCaller
	options ExecutorOptions
}

// NewToolExecutor creates a new tool executor
func NewToolExecutor(caller ToolCaller, options ExecutorOptions) *ToolExecutor {
	if options.Format == "" {
		options.Format = OutputFormatTable
	}
	if options.Out == nil {
		options.Out = os.Stdout
	}
	if options.ErrOut == nil {
		options.ErrOut = os.Stderr
	}
	return &ToolExecutor{caller: caller, options: options}
}

// Execute executes a tool and formats the output
func (e *ToolExecutor) Execute(ctx context.Context, toolName string, arguments map[string]any) error {
	result, err := e.caller.CallTool(ctx, toolName, arguments)
	if err != nil {
		return fmt.Errorf("failed to execute tool %s: %w", toolName, err)
	}

	if result.IsError {
		return e.formatError(toolName, result)
	}
	return e.formatOutput(toolName, result)
}

func textOf(result *mcp.CallToolResult) string {
	var parts []string
	for _, content := range result.Content {
		if textContent, ok := mcp.AsTextContent(content); ok {
			parts = append(parts, textContent.Text)
		}
	}
	return strings.Join(parts, "\n")
}

func (e *ToolExecutor) formatError(toolName string, result *mcp.CallToolResult) error {
	msg := textOf(result)
	fmt.Fprintf(e.options.ErrOut, "%s %s\n", text.FgRed.Sprint("Error:"), msg)
	return &ToolError{Tool: toolName, Message: msg}
}

func (e *ToolExecutor) formatOutput(toolName string, result *mcp.CallToolResult) error {
	if len(result.Content) == 0 {
		if !e.options.Quiet {
			fmt.Fprintln(e.options.Out, "No results")
		}
		return nil
	}

	textContent, ok := mcp.AsTextContent(result.Content[0])
	if !ok {
		return errors.New("content is not text")
	}

	switch e.options.Format {
	case OutputFormatJSON:
		fmt.Fprintln(e.options.Out, textContent.Text)
		return nil
	case OutputFormatYAML:
		return e.outputYAML(textContent.Text)
	case OutputFormatTable:
		return e.outputTable(toolName, textContent.Text)
	default:
		return fmt.Errorf("unsupported output format: %s", e.options.Format)
	}
}

// outputYAML re-encodes the JSON text as block YAML. JSON is parsed as YAML
// so mapping order survives, which keeps query columns in order.
func (e *ToolExecutor) outputYAML(jsonData string) error {
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(jsonData), &node); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	clearStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}

	_, err := e.options.Out.Write(buf.Bytes())
	return err
}

// clearStyle drops the flow and quoting styles inherited from JSON. The
// encoder re-quotes strings that would otherwise change type.
func clearStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		clearStyle(c)
	}
}

func (e *ToolExecutor) outputTable(toolName, jsonData string) error {
	var err error
	switch toolName {
	case "list_objects":
		err = e.formatObjects(jsonData)
	case "describe_object":
		err = e.formatDescribe(jsonData)
	case "execute_soql_query":
		err = e.formatQuery(jsonData)
	default:
		err = errors.New("no table layout")
	}
	if err != nil {
		// Fallback to raw text
		fmt.Fprintln(e.options.Out, jsonData)
	}
	return nil
}

func (e *ToolExecutor) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(e.options.Out)
	t.SetStyle(table.StyleRounded)
	return t
}

func header(columns ...string) table.Row {
	row := make(table.Row, len(columns))
	for i, col := range columns {
		row[i] = text.FgHiCyan.Sprint(strings.ToUpper(col))
	}
	return row
}

func (e *ToolExecutor) formatObjects(jsonData string) error {
	var out struct {
		Objects []struct {
			Name       string `json:"name"`
			Label      string `json:"label"`
			Custom     bool   `json:"custom"`
			Queryable  bool   `json:"queryable"`
			Searchable bool   `json:"searchable"`
			Createable bool   `json:"createable"`
			Updateable bool   `json:"updateable"`
			Deletable  bool   `json:"deletable"`
		} `json:"objects"`
	}
	if err := json.Unmarshal([]byte(jsonData), &out); err != nil {
		return err
	}
	if len(out.Objects) == 0 {
		fmt.Fprintln(e.options.Out, text.FgYellow.Sprint("No objects found"))
		return nil
	}

	t := e.newTable()
	t.AppendHeader(header("name", "label", "custom", "queryable", "searchable", "createable", "updateable", "deletable"))
	for _, o := range out.Objects {
		t.AppendRow(table.Row{
			o.Name, o.Label,
			formatBool(o.Custom), formatBool(o.Queryable), formatBool(o.Searchable),
			formatBool(o.Createable), formatBool(o.Updateable), formatBool(o.Deletable),
		})
	}
	t.Render()
	e.printTotal(len(out.Objects), "objects")
	return nil
}

func (e *ToolExecutor) formatDescribe(jsonData string) error {
	var out struct {
		Name   string `json:"name"`
		Label  string `json:"label"`
		Fields []struct {
			Name           string `json:"name"`
			Label          string `json:"label"`
			Type           string `json:"type"`
			Length         *int   `json:"length"`
			Required       bool   `json:"required"`
			Unique         bool   `json:"unique"`
			PicklistValues []struct {
				Value string `json:"value"`
			} `json:"picklistValues"`
			ReferenceTo []string `json:"referenceTo"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(jsonData), &out); err != nil {
		return err
	}

	fmt.Fprintf(e.options.Out, "%s %s (%s)\n", text.FgHiBlue.Sprint("Object:"), text.FgHiWhite.Sprint(out.Name), out.Label)

	t := e.newTable()
	t.AppendHeader(header("name", "label", "type", "length", "required", "unique", "values / references"))
	for _, f := range out.Fields {
		var length any = text.FgHiBlack.Sprint("-")
		if f.Length != nil && *f.Length > 0 {
			length = *f.Length
		}

		var extra []string
		for _, p := range f.PicklistValues {
			extra = append(extra, p.Value)
		}
		if len(f.ReferenceTo) > 0 {
			extra = append(extra, "→ "+strings.Join(f.ReferenceTo, ", "))
		}

		t.AppendRow(table.Row{
			f.Name, f.Label, text.FgCyan.Sprint(f.Type), length,
			formatBool(f.Required), formatBool(f.Unique), truncate(strings.Join(extra, ", "), 50),
		})
	}
	t.Render()
	e.printTotal(len(out.Fields), "fields")
	return nil
}

func (e *ToolExecutor) formatQuery(jsonData string) error {
	var out struct {
		Rows     []map[string]json.RawMessage `json:"rows"`
		RowCount int                          `json:"row_count"`
		Columns  []string                     `json:"columns"`
	}
	if err := json.Unmarshal([]byte(jsonData), &out); err != nil {
		return err
	}
	if len(out.Rows) == 0 {
		fmt.Fprintln(e.options.Out, text.FgYellow.Sprint("No rows found"))
		return nil
	}

	t := e.newTable()
	t.AppendHeader(header(out.Columns...))
	for _, r := range out.Rows {
		row := make(table.Row, len(out.Columns))
		for i, col := range out.Columns {
			row[i] = formatCell(r[col])
		}
		t.AppendRow(row)
	}
	t.Render()
	e.printTotal(out.RowCount, "rows")
	return nil
}

func (e *ToolExecutor) printTotal(n int, noun string) {
	if e.options.Quiet {
		return
	}
	fmt.Fprintf(e.options.Out, "\n%s %s %s\n",
		text.FgHiBlue.Sprint("Total:"),
		text.FgHiWhite.Sprint(n),
		noun)
}

// formatCell renders one JSON value. Strings are unquoted, null is a dash and
// nested records stay compact JSON.
func formatCell(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return text.FgHiBlack.Sprint("-")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return truncate(s, 60)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return truncate(string(raw), 60)
	}
	return truncate(buf.String(), 60)
}

func formatBool(v bool) string {
	if v {
		return text.FgGreen.Sprint("✓")
	}
	return text.FgHiBlack.Sprint("-")
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
