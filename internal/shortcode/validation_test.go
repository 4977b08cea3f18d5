package shortcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

func TestValidator_CoerceParams(t *testing.T) {
	v := NewValidator()

	def := Definition{
		Name: "test",
		Params: []Param{
			{Name: "id", Type: ParamString, Required: true},
			{Name: "count", Type: ParamInt},
			{Name: "enabled", Type: ParamBool},
		},
	}

	got, problems := v.CoerceParams(def, map[string]any{
		"id":      "abc",
		"count":   "42",
		"enabled": "true",
	})
	if len(problems) != 0 {
		t.Fatalf("CoerceParams() unexpected problems: %v", problems)
	}
	if got["id"] != "abc" || got["count"] != 42 || got["enabled"] != true {
		t.Fatalf("unexpected coerced params %v", got)
	}
}

func TestValidator_ReportsEveryProblem(t *testing.T) {
	v := NewValidator()
	def := Definition{
		Name: "test",
		Params: []Param{
			{Name: "id", Type: ParamString, Required: true},
			{Name: "count", Type: ParamInt},
		},
	}

	_, problems := v.CoerceParams(def, map[string]any{
		"count":  "many",
		"param1": "stray",
	})
	if len(problems) != 3 {
		t.Fatalf("expected 3 problems, got %v", problems)
	}
	if !errors.Is(problems[0], ErrParameterType) {
		t.Fatalf("expected type mismatch first, got %v", problems[0])
	}
	if !errors.Is(problems[1], ErrUnknownParameter) || !strings.Contains(problems[1].Error(), "positional parameter 1") {
		t.Fatalf("expected unknown positional parameter, got %v", problems[1])
	}
	if !errors.Is(problems[2], ErrMissingParameter) {
		t.Fatalf("expected missing parameter last, got %v", problems[2])
	}
}

func TestValidator_ValidateDefinition(t *testing.T) {
	v := NewValidator()
	cases := []Definition{
		{Name: " "},
		{Name: "dup", Params: []Param{{Name: "a", Type: ParamString}, {Name: "a", Type: ParamInt}}},
		{Name: "typed", Params: []Param{{Name: "a", Type: "float"}}},
	}
	for _, def := range cases {
		if err := v.ValidateDefinition(def); !errors.Is(err, ErrInvalidDefinition) {
			t.Fatalf("expected ErrInvalidDefinition for %+v, got %v", def, err)
		}
	}
	for _, def := range BuiltInDefinitions() {
		if err := v.ValidateDefinition(def); err != nil {
			t.Fatalf("built-in %s invalid: %v", def.Name, err)
		}
	}
}

func TestValidator_CheckInvocation(t *testing.T) {
	registry, err := NewBookRegistry()
	if err != nil {
		t.Fatalf("NewBookRegistry: %v", err)
	}
	v := NewValidator()

	cases := []struct {
		name    string
		sc      interfaces.ParsedShortcode
		wantErr error
		ok      bool
	}{
		{name: "hint ok", sc: interfaces.ParsedShortcode{Name: "hint", Paired: true, Params: map[string]any{"param1": "warning"}}, ok: true},
		{name: "hint bad kind", sc: interfaces.ParsedShortcode{Name: "hint", Paired: true, Params: map[string]any{"param1": "loud"}}},
		{name: "hint unclosed", sc: interfaces.ParsedShortcode{Name: "hint", Params: map[string]any{}}, wantErr: ErrInnerContent},
		{name: "figure closed", sc: interfaces.ParsedShortcode{Name: "figure", Paired: true, Params: map[string]any{"src": "a.png"}}, wantErr: ErrInnerContent},
		{name: "figure no src", sc: interfaces.ParsedShortcode{Name: "figure", Params: map[string]any{}}, wantErr: ErrMissingParameter},
		{name: "details titled", sc: interfaces.ParsedShortcode{Name: "details", Paired: true, Params: map[string]any{"title": "More"}}, ok: true},
		{name: "details untitled", sc: interfaces.ParsedShortcode{Name: "details", Paired: true, Params: map[string]any{}}},
		{name: "button both", sc: interfaces.ParsedShortcode{Name: "button", Paired: true, Params: map[string]any{"href": "https://example.com", "relref": "/"}}},
		{name: "quizdown params", sc: interfaces.ParsedShortcode{Name: "quizdown", Paired: true, Params: map[string]any{"param1": "x"}}, wantErr: ErrUnknownParameter},
		{name: "youtube ok", sc: interfaces.ParsedShortcode{Name: "youtube", Params: map[string]any{"param1": "abc", "start": "30"}}, ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def, ok := registry.Get(tc.sc.Name)
			if !ok {
				t.Fatalf("definition %s missing", tc.sc.Name)
			}
			problems := v.CheckInvocation(def, tc.sc)
			if tc.ok {
				if len(problems) != 0 {
					t.Fatalf("expected no problems, got %v", problems)
				}
				return
			}
			if len(problems) == 0 {
				t.Fatal("expected problems")
			}
			if tc.wantErr != nil && !errors.Is(problems[0], tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, problems[0])
			}
		})
	}
}
