package llm

import (
	gemini "github.com/google/generative-ai-go/genai"
	"google.golang.org/genai"
)

// SchemaType names the JSON type of a Schema node
type SchemaType string

// Schema node types understood by both providers
const (
	TypeObject  SchemaType = "object"
	TypeArray   SchemaType = "array"
	TypeString  SchemaType = "string"
	TypeNumber  SchemaType = "number"
	TypeInteger SchemaType = "integer"
	TypeBoolean SchemaType = "boolean"
)

// Schema is a provider-neutral description of the JSON shape a model must answer with.
// It covers the subset of OpenAPI schema that structured-output endpoints accept.
type Schema struct {
	Type        SchemaType
	Description string
	Properties  map[string]*Schema
	Required    []string
	Order       []string // must list every property when set; only the genai provider honors it
	Items       *Schema
	Enum        []string
	Nullable    bool
}

// String returns a string schema with a description
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// ArrayOf returns an array schema of the given items
func ArrayOf(items *Schema, description string) *Schema {
	return &Schema{Type: TypeArray, Items: items, Description: description}
}

// Object returns an object schema with the named properties required
func Object(properties map[string]*Schema, required ...string) *Schema {
	return &Schema{
		Type:       TypeObject,
		Properties: properties,
		Required:   required,
	}
}

func toGeminiType(t SchemaType) gemini.Type {
	switch t {
	case TypeObject:
		return gemini.TypeObject
	case TypeArray:
		return gemini.TypeArray
	case TypeString:
		return gemini.TypeString
	case TypeNumber:
		return gemini.TypeNumber
	case TypeInteger:
		return gemini.TypeInteger
	case TypeBoolean:
		return gemini.TypeBoolean
	default:
		return gemini.TypeUnspecified
	}
}

// toGeminiSchema converts a Schema for the generative-ai-go SDK
func toGeminiSchema(s *Schema) *gemini.Schema {
	if s == nil {
		return nil
	}
	out := &gemini.Schema{
		Type:        toGeminiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Enum:        s.Enum,
		Nullable:    s.Nullable,
		Items:       toGeminiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*gemini.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGeminiSchema(prop)
		}
	}
	return out
}

func toGenAIType(t SchemaType) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeString:
		return genai.TypeString
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}

// toGenAISchema converts a Schema for the unified genai SDK
func toGenAISchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:             toGenAIType(s.Type),
		Description:      s.Description,
		Required:         s.Required,
		PropertyOrdering: s.Order,
		Enum:             s.Enum,
		Items:            toGenAISchema(s.Items),
	}
	if s.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenAISchema(prop)
		}
	}
	return out
}
