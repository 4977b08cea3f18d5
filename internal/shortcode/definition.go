// Package shortcode keeps the catalogue of shortcodes a book may use and
// checks invocations against it. Parsing lives in the parser subpackage.
package shortcode

// ParamType enumerates the supported parameter coercions.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamInt    ParamType = "int"
	ParamBool   ParamType = "bool"
	ParamURL    ParamType = "url"
)

// InnerMode states whether an invocation needs a closing tag.
type InnerMode int

const (
	// InnerOptional accepts both {{< name >}} and {{< name >}}...{{< /name >}}.
	InnerOptional InnerMode = iota
	// InnerRequired demands a closing tag.
	InnerRequired
	// InnerForbidden rejects a closing tag.
	InnerForbidden
)

// Param describes a single parameter. Positional Hugo parameters are named
// param1, param2 and so on, matching what the parser produces.
type Param struct {
	Name     string
	Type     ParamType
	Required bool
	// Validate runs on the coerced value.
	Validate func(value any) error
}

// Definition is a known shortcode.
type Definition struct {
	Name        string
	Description string
	Inner       InnerMode
	Params      []Param
	// AnyParams skips parameter checks entirely.
	AnyParams bool
	// Validate runs after every parameter coerced, for rules spanning
	// several parameters.
	Validate func(params map[string]any) error
}
