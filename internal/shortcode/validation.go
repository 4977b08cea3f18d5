package shortcode

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// Validator performs definition and invocation validation.
type Validator struct{}

// NewValidator returns a Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateDefinition ensures the definition has a name and valid parameters.
func (v *Validator) ValidateDefinition(def Definition) error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}

	seen := make(map[string]struct{})
	for _, param := range def.Params {
		name := strings.TrimSpace(param.Name)
		if name == "" {
			return fmt.Errorf("%w: %s: parameter name required", ErrInvalidDefinition, def.Name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %s: duplicate parameter %q", ErrInvalidDefinition, def.Name, name)
		}
		seen[name] = struct{}{}

		switch param.Type {
		case ParamString, ParamInt, ParamBool, ParamURL:
		default:
			return fmt.Errorf("%w: %s: parameter %q unknown type %q", ErrInvalidDefinition, def.Name, name, param.Type)
		}
	}
	return nil
}

// CheckInvocation returns every way sc departs from def, ordered by
// parameter name. A nil result means the invocation is valid.
func (v *Validator) CheckInvocation(def Definition, sc interfaces.ParsedShortcode) []error {
	var problems []error

	switch {
	case def.Inner == InnerRequired && !sc.Paired:
		problems = append(problems, fmt.Errorf("%w: %s needs a closing {{< /%s >}}", ErrInnerContent, def.Name, def.Name))
	case def.Inner == InnerForbidden && sc.Paired:
		problems = append(problems, fmt.Errorf("%w: %s does not take a closing tag", ErrInnerContent, def.Name))
	}

	if def.AnyParams {
		return problems
	}

	coerced, paramProblems := v.CoerceParams(def, sc.Params)
	problems = append(problems, paramProblems...)
	if len(paramProblems) == 0 && def.Validate != nil {
		if err := def.Validate(coerced); err != nil {
			problems = append(problems, err)
		}
	}
	return problems
}

// CoerceParams validates supplied parameters against the definition,
// returning the coerced values and one error per problem.
func (v *Validator) CoerceParams(def Definition, supplied map[string]any) (map[string]any, []error) {
	allowed := make(map[string]Param, len(def.Params))
	for _, param := range def.Params {
		allowed[param.Name] = param
	}

	keys := make([]string, 0, len(supplied))
	for key := range supplied {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make(map[string]any, len(supplied))
	var problems []error
	for _, key := range keys {
		param, ok := allowed[key]
		if !ok {
			problems = append(problems, fmt.Errorf("%w: %s does not accept %s", ErrUnknownParameter, def.Name, describeParam(key)))
			continue
		}
		value, err := coerceValue(param.Type, supplied[key])
		if err != nil {
			problems = append(problems, fmt.Errorf("%w: %s %s: %v", ErrParameterType, def.Name, describeParam(key), err))
			continue
		}
		if param.Validate != nil {
			if err := param.Validate(value); err != nil {
				problems = append(problems, fmt.Errorf("%s %s: %w", def.Name, describeParam(key), err))
				continue
			}
		}
		out[key] = value
	}

	for _, param := range def.Params {
		if !param.Required {
			continue
		}
		if _, ok := supplied[param.Name]; !ok {
			problems = append(problems, fmt.Errorf("%w: %s needs %s", ErrMissingParameter, def.Name, describeParam(param.Name)))
		}
	}
	return out, problems
}

func coerceValue(paramType ParamType, value any) (any, error) {
	switch paramType {
	case ParamString:
		return cast.ToStringE(value)
	case ParamInt:
		return cast.ToIntE(value)
	case ParamBool:
		return cast.ToBoolE(value)
	case ParamURL:
		raw, err := cast.ToStringE(value)
		if err != nil {
			return nil, err
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return nil, err
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported parameter type %q", paramType)
	}
}

// describeParam turns param1 into "positional parameter 1".
func describeParam(name string) string {
	if rest, ok := strings.CutPrefix(name, "param"); ok && rest != "" && strings.Trim(rest, "0123456789") == "" {
		return "positional parameter " + rest
	}
	return fmt.Sprintf("parameter %q", name)
}

// OneOf builds a Param.Validate accepting only the listed strings.
func OneOf(values ...string) func(any) error {
	return func(value any) error {
		s := cast.ToString(value)
		for _, allowed := range values {
			if s == allowed {
				return nil
			}
		}
		return fmt.Errorf("%q is not one of %s", s, strings.Join(values, ", "))
	}
}
