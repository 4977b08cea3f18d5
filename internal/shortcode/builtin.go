package shortcode

import (
	"errors"

	"github.com/goliatone/go-bookcheck/internal/quiz"
)

// BuiltInDefinitions returns the shortcodes of Hugo itself and of the
// hugo-book theme, plus quizdown.
func BuiltInDefinitions() []Definition {
	return []Definition{
		quizdownDefinition(),
		hintDefinition(),
		detailsDefinition(),
		{Name: "tabs", Description: "Tab group", Inner: InnerRequired, Params: []Param{
			{Name: "param1", Type: ParamString, Required: true},
		}},
		{Name: "tab", Description: "Single tab inside tabs", Inner: InnerRequired, Params: []Param{
			{Name: "param1", Type: ParamString, Required: true},
		}},
		{Name: "columns", Description: "Side by side columns split by <--->", Inner: InnerRequired},
		buttonDefinition(),
		{Name: "expand", Description: "Collapsible block", Inner: InnerRequired, Params: []Param{
			{Name: "param1", Type: ParamString},
			{Name: "param2", Type: ParamString},
		}},
		{Name: "katex", Description: "KaTeX math", Inner: InnerOptional, Params: []Param{
			{Name: "display", Type: ParamBool},
			{Name: "class", Type: ParamString},
		}},
		{Name: "mermaid", Description: "Mermaid diagram", Inner: InnerRequired, Params: []Param{
			{Name: "class", Type: ParamString},
		}},
		{Name: "section", Description: "Lists child pages", Inner: InnerForbidden, Params: []Param{
			{Name: "summary", Type: ParamBool},
		}},
		{Name: "figure", Description: "Image with caption", Inner: InnerForbidden, Params: []Param{
			{Name: "src", Type: ParamString, Required: true},
			{Name: "alt", Type: ParamString},
			{Name: "caption", Type: ParamString},
			{Name: "title", Type: ParamString},
			{Name: "link", Type: ParamString},
			{Name: "width", Type: ParamString},
			{Name: "height", Type: ParamString},
			{Name: "class", Type: ParamString},
		}},
		youTubeDefinition(),
		{Name: "highlight", Description: "Highlighted code", Inner: InnerRequired, Params: []Param{
			{Name: "param1", Type: ParamString, Required: true},
			{Name: "param2", Type: ParamString},
		}},
		{Name: "ref", Description: "Absolute link to a page", Inner: InnerForbidden, Params: []Param{
			{Name: "param1", Type: ParamString, Required: true},
		}},
		{Name: "relref", Description: "Relative link to a page", Inner: InnerForbidden, Params: []Param{
			{Name: "param1", Type: ParamString, Required: true},
		}},
	}
}

func quizdownDefinition() Definition {
	return Definition{
		Name:        quiz.ShortcodeName,
		Description: "Interactive quiz rendered by quizdown",
		Inner:       InnerRequired,
	}
}

func hintDefinition() Definition {
	return Definition{
		Name:        "hint",
		Description: "Colored callout box",
		Inner:       InnerRequired,
		Params: []Param{
			{Name: "param1", Type: ParamString, Validate: OneOf("info", "warning", "danger")},
		},
	}
}

func detailsDefinition() Definition {
	return Definition{
		Name:        "details",
		Description: "Collapsible section with a summary line",
		Inner:       InnerRequired,
		Params: []Param{
			{Name: "param1", Type: ParamString},
			{Name: "param2", Type: ParamString, Validate: OneOf("open")},
			{Name: "title", Type: ParamString},
			{Name: "open", Type: ParamBool},
		},
		Validate: func(params map[string]any) error {
			_, positional := params["param1"]
			_, named := params["title"]
			if !positional && !named {
				return errors.New("details needs a title")
			}
			return nil
		},
	}
}

func buttonDefinition() Definition {
	return Definition{
		Name:        "button",
		Description: "Link styled as a button",
		Inner:       InnerRequired,
		Params: []Param{
			{Name: "href", Type: ParamURL},
			{Name: "relref", Type: ParamString},
			{Name: "class", Type: ParamString},
		},
		Validate: func(params map[string]any) error {
			_, href := params["href"]
			_, relref := params["relref"]
			if href == relref {
				return errors.New("button needs exactly one of href or relref")
			}
			return nil
		},
	}
}

func youTubeDefinition() Definition {
	return Definition{
		Name:        "youtube",
		Description: "Embedded YouTube player",
		Inner:       InnerForbidden,
		Params: []Param{
			{Name: "param1", Type: ParamString},
			{Name: "id", Type: ParamString},
			{Name: "start", Type: ParamInt},
			{Name: "autoplay", Type: ParamBool},
			{Name: "title", Type: ParamString},
		},
		Validate: func(params map[string]any) error {
			_, positional := params["param1"]
			_, named := params["id"]
			if !positional && !named {
				return errors.New("youtube needs a video id")
			}
			return nil
		},
	}
}
