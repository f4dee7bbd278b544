package templates

import (
	_ "embed"

	"github.com/Soypete/streambuddy/types"
)

//go:embed defaults.yaml
var defaultTemplates []byte

// Defaults returns the built-in template set.
func Defaults() []types.ResponseTemplate {
	ts, err := Parse(defaultTemplates)
	if err != nil {
		panic("templates: built-in defaults are invalid: " + err.Error())
	}
	return ts
}
