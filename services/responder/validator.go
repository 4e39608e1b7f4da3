package responder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"discordbridge/config"
	"discordbridge/core"
)

const responseSchemaURL = "discordbridge://schema/response-action.json"

// responseActionSchema describes the action record a webhook may return.
// null and false are accepted for every field since they mean "no action".
const responseActionSchema = `{
	"type": "object",
	"properties": {
		"reply":    {"anyOf": [{"type": ["string", "null"]}, {"enum": [false]}]},
		"reaction": {"anyOf": [{"type": ["string", "null"]}, {"enum": [false]}]},
		"fileUrl":  {"anyOf": [{"type": ["string", "null"]}, {"enum": [false]}]},
		"embed":    {"anyOf": [{"type": ["object", "null"]}, {"enum": [false]}]}
	}
}`

// Validator checks webhook response bodies before they are dispatched
type Validator interface {
	Validate(body []byte) error
}

// NewValidator returns the validator for a RESPONSE_VALIDATION mode.
// Permissive mode accepts every body; strict mode requires a JSON object matching the action schema.
func NewValidator(mode string) (Validator, error) {
	switch mode {
	case "", config.ResponseValidationPermissive:
		return PermissiveValidator{}, nil
	case config.ResponseValidationStrict:
		return NewSchemaValidator()
	default:
		return nil, fmt.Errorf("%w: unknown response validation mode %q", core.ErrInvalidConfig, mode)
	}
}

// PermissiveValidator accepts any body
type PermissiveValidator struct{}

func (PermissiveValidator) Validate([]byte) error { return nil }

// SchemaValidator validates bodies against the compiled response action schema
type SchemaValidator struct {
	schema *jsonschema.Schema
}

func NewSchemaValidator() (*SchemaValidator, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(responseActionSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to parse response schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(responseSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add response schema: %w", err)
	}

	schema, err := c.Compile(responseSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile response schema: %w", err)
	}

	return &SchemaValidator{schema: schema}, nil
}

// Validate accepts an empty body as "no action" and otherwise requires a schema-conforming JSON object
func (v *SchemaValidator) Validate(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(trimmed))
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}

	if err := v.schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", core.ErrMalformedResponse, err)
	}
	return nil
}
