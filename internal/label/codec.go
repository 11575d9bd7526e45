package label

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedTemplate is returned by ImportTemplate for input that is not a usable template.
var ErrMalformedTemplate = errors.New("malformed template file")

// ExportTemplate serializes t into the portable JSON template format.
func ExportTemplate(t *Template) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("export template: %w", ErrInvalidTemplate)
	}
	out := t.Clone()
	if out.Elements == nil {
		out.Elements = []Element{}
	}
	return json.MarshalIndent(out, "", "  ")
}

// importEnvelope captures which required keys were present in the file.
type importEnvelope struct {
	Name     *string          `json:"name"`
	Width    *float64         `json:"width"`
	Height   *float64         `json:"height"`
	Elements *json.RawMessage `json:"elements"`
}

// ImportTemplate parses a serialized template. The result carries a fresh
// temporary id so saving it never overwrites the template it was exported from.
// Nothing is returned on error, so callers can keep their state unchanged.
func ImportTemplate(data []byte) (*Template, error) {
	var env importEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	var missing []string
	if env.Name == nil {
		missing = append(missing, "name")
	}
	if env.Width == nil {
		missing = append(missing, "width")
	}
	if env.Height == nil {
		missing = append(missing, "height")
	}
	if env.Elements == nil {
		missing = append(missing, "elements")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedTemplate, strings.Join(missing, ", "))
	}

	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	if t.Elements == nil {
		t.Elements = []Element{}
	}
	t.ID = NewTemporaryID()
	t.IsDefault = false
	t.CreatedAt = nil
	t.UpdatedAt = nil
	return &t, nil
}
