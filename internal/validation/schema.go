package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// DefaultPageTypes are the accepted values of the front matter "type" key.
var DefaultPageTypes = []string{"docs"}

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// Key returns the top level front matter key the issue refers to.
func (i ValidationIssue) Key() string {
	location := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(i.Location), "#"), "/")
	key, _, _ := strings.Cut(location, "/")
	return key
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// SchemaOptions tunes the generated front matter schema.
type SchemaOptions struct {
	// PageTypes lists accepted "type" values; empty means DefaultPageTypes.
	PageTypes []string
}

// FrontMatterSchema describes the chapter page header. Presence is checked
// by the lint rules, the schema only constrains the shape of present keys.
func FrontMatterSchema(opts SchemaOptions) map[string]any {
	types := opts.PageTypes
	if len(types) == 0 {
		types = DefaultPageTypes
	}
	enum := make([]any, 0, len(types))
	for _, t := range types {
		enum = append(enum, t)
	}

	nonEmpty := func() map[string]any {
		return map[string]any{"type": "string", "minLength": 1}
	}
	stringList := func() map[string]any {
		return map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string", "minLength": 1},
		}
	}

	return map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"canonical": map[string]any{
				"type":    "string",
				"format":  "uri",
				"pattern": "^https?://",
			},
			"title":       nonEmpty(),
			"description": nonEmpty(),
			"linkTitle":   nonEmpty(),
			"license":     nonEmpty(),
			"type":        map[string]any{"type": "string", "enum": enum},
			"categories":  stringList(),
			"tags":        stringList(),
			"date":        map[string]any{"type": "string"},
			"nav_weight":  map[string]any{"type": "integer", "minimum": 0},
			"lint_ignore": stringList(),
		},
		"additionalProperties": true,
	}
}

// Validator checks front matter maps against a compiled schema. It is safe
// for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

// NewFrontMatterValidator compiles the front matter schema.
func NewFrontMatterValidator(opts SchemaOptions) (*Validator, error) {
	compiled, err := compileSchema(FrontMatterSchema(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate returns the issues of raw, ordered by location. raw goes through
// a JSON round trip first so YAML scalar types line up with JSON schema types.
func (v *Validator) Validate(raw map[string]any) []ValidationIssue {
	if v == nil || v.schema == nil {
		return nil
	}
	payload, err := toJSONValue(raw)
	if err != nil {
		return []ValidationIssue{{Message: err.Error()}}
	}
	if err := v.schema.Validate(payload); err != nil {
		issues := Issues(err)
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].Location < issues[j].Location
		})
		return issues
	}
	return nil
}

// ValidatePayload validates payload against the provided JSON schema.
func ValidatePayload(schema map[string]any, payload map[string]any) error {
	if schema == nil {
		return nil
	}
	if payload == nil {
		payload = map[string]any{}
	}
	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	value, err := toJSONValue(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if err := compiled.Validate(value); err != nil {
		return &PayloadValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

func toJSONValue(payload map[string]any) (any, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	var value any
	if err := json.Unmarshal(encoded, &value); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return value, nil
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource("frontmatter.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("frontmatter.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
