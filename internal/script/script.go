// Package script reads action scripts: one JSON action per line.
//
//	# comments and blank lines are skipped
//	{"type":"ADD_NEW_TO_DO","value":"Buy milk."}
//	{"type":"REMOVE_TO_DO","value":"todo-1"}
//	{"type":"BOGUS","value":null}
//
// Each line is checked against an embedded JSON Schema before it is decoded,
// so structural mistakes are reported with their line number. Unknown action
// types are valid script content; rejecting them is the engine's job.
package script

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/roach88/todoflux/internal/ir"
)

//go:embed action.schema.json
var actionSchemaJSON string

const actionSchemaURL = "https://github.com/roach88/todoflux/schemas/action.json"

// maxLineBytes bounds a single script line.
const maxLineBytes = 1 << 20

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func actionSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(actionSchemaURL, strings.NewReader(actionSchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add action schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(actionSchemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile action schema: %w", schemaErr)
		}
	})
	return schema, schemaErr
}

// Line is one decoded script line.
type Line struct {
	Number int
	Action ir.Action
}

// Error reports a bad script line.
type Error struct {
	Source string
	Line   int
	Path   string
	Msg    string
}

func (e *Error) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Source != "" {
		loc = e.Source + ":" + fmt.Sprint(e.Line)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", loc, e.Path, e.Msg)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

// Parse reads a script. source names the input in error messages.
// It stops at the first bad line.
func Parse(r io.Reader, source string) ([]Line, error) {
	sch, err := actionSchema()
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lines := []Line{}
	n := 0
	for scanner.Scan() {
		n++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 || raw[0] == '#' {
			continue
		}

		doc, err := unmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, &Error{Source: source, Line: n, Msg: fmt.Sprintf("invalid JSON: %v", err)}
		}
		if err := sch.Validate(doc); err != nil {
			return nil, schemaError(source, n, err)
		}

		action, err := ir.ParseAction(raw)
		if err != nil {
			return nil, &Error{Source: source, Line: n, Msg: err.Error()}
		}
		lines = append(lines, Line{Number: n, Action: action})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script %s: %w", source, err)
	}
	return lines, nil
}

// ParseFile reads a script from disk.
func ParseFile(path string) ([]Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// unmarshalJSON decodes a document the way jsonschema/v5 expects for
// Validate: numbers as json.Number, no trailing data after the value.
func unmarshalJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("invalid character after top-level value")
	}
	return doc, nil
}

// schemaError reports the first leaf cause of a validation failure.
func schemaError(source string, line int, err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return &Error{Source: source, Line: line, Msg: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &Error{
		Source: source,
		Line:   line,
		Path:   pointerToPath(ve.InstanceLocation),
		Msg:    ve.Message,
	}
}

func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(ptr, "#")
	ptr = strings.TrimPrefix(ptr, "/")
	return strings.ReplaceAll(ptr, "/", ".")
}
