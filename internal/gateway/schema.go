package gateway

import "fmt"

// FieldType enumerates accepted parameter value types.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
)

// Field declares one parameter in a command schema.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	Positive bool        // numbers only: value must be > 0
	Default  interface{} // applied when the field is absent
}

// Schema is the ordered parameter declaration for a command.
type Schema []Field

// Params is a validated, defaulted parameter set.
type Params map[string]interface{}

// String returns the named string parameter, or "" if absent.
func (p Params) String(name string) string {
	v, _ := p[name].(string)
	return v
}

// Number returns the named numeric parameter, or 0 if absent.
func (p Params) Number(name string) float64 {
	v, _ := p[name].(float64)
	return v
}

// Validate checks raw request params against the schema and returns the
// validated set with defaults applied. Unknown fields are ignored.
func (s Schema) Validate(raw map[string]interface{}) (Params, error) {
	out := make(Params, len(s))
	for _, f := range s {
		v, ok := raw[f.Name]
		if !ok || v == nil {
			if f.Required {
				return nil, fmt.Errorf("missing required parameter %q", f.Name)
			}
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}

		switch f.Type {
		case FieldString:
			sv, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("parameter %q must be a string", f.Name)
			}
			out[f.Name] = sv
		case FieldNumber:
			nv, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("parameter %q must be a number", f.Name)
			}
			if f.Positive && nv <= 0 {
				return nil, fmt.Errorf("parameter %q must be positive", f.Name)
			}
			out[f.Name] = nv
		default:
			return nil, fmt.Errorf("parameter %q has unsupported type %q", f.Name, f.Type)
		}
	}
	return out, nil
}
