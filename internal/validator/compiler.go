// Package validator provides interfaces and types for JSON Schema validation.
// pgfa uses it to check the YAML configuration file before it is decoded.
package validator

// A JSONDocument is a parsed JSON document in the shape jsonschema expects
// (numbers as json.Number). Use NormalizeDocument to build one from YAML data.
type JSONDocument interface{}

// A JSONSchema is a parsed JSON document representing a JSON Schema.
type JSONSchema JSONDocument

// Validator represents something which can be used to validate a JSON document.
type Validator interface {
	// Validate validates JSON document.
	Validate(v JSONDocument) error
}

// Compiler defines a JSON Schema compiler. Schemas are registered under an id first and
// compiled afterwards, so that $ref between registered schemas can be resolved.
type Compiler interface {
	// AddSchema registers a JSONSchema with the compiler.
	AddSchema(id string, data JSONSchema) error

	// Compile creates a Validator from the JSONSchema previously added with the given ID.
	Compile(id string) (Validator, error)
}
