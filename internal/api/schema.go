package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request body schemas. Text and word length limits are left to the
// processor so its messages reach the client unchanged.
const (
	processTextSchema = `{
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string"},
    "detect_headings": {"type": "boolean"}
  }
}`

	batchSchema = `{
  "type": "object",
  "required": ["texts"],
  "properties": {
    "texts": {"type": "array", "minItems": 1, "maxItems": %d, "items": {"type": "string"}},
    "detect_headings": {"type": "boolean"}
  }
}`

	calculateORPSchema = `{
  "type": "object",
  "required": ["word"],
  "properties": {
    "word": {"type": "string"}
  }
}`

	extractURLSchema = `{
  "type": "object",
  "required": ["url"],
  "properties": {
    "url": {"type": "string", "minLength": 1, "maxLength": 2048},
    "process": {"type": "boolean"},
    "sessions": {"type": "boolean"},
    "detect_headings": {"type": "boolean"}
  }
}`

	streamSchema = `{
  "type": "object",
  "required": ["text"],
  "properties": {
    "text": {"type": "string"},
    "wpm": {"type": "integer"},
    "speed": {"type": "string"},
    "detect_headings": {"type": "boolean"}
  }
}`
)

// MaxBatchItems caps the number of texts in one batch request.
const MaxBatchItems = 100

type schemas struct {
	processText  *jsonschema.Schema
	batch        *jsonschema.Schema
	calculateORP *jsonschema.Schema
	extractURL   *jsonschema.Schema
	stream       *jsonschema.Schema
}

func compileSchemas() (*schemas, error) {
	var s schemas
	for _, def := range []struct {
		dst  **jsonschema.Schema
		name string
		src  string
	}{
		{&s.processText, "process-text.json", processTextSchema},
		{&s.batch, "batch.json", fmt.Sprintf(batchSchema, MaxBatchItems)},
		{&s.calculateORP, "calculate-orp.json", calculateORPSchema},
		{&s.extractURL, "extract-url.json", extractURLSchema},
		{&s.stream, "stream.json", streamSchema},
	} {
		compiled, err := jsonschema.CompileString(def.name, def.src)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", def.name, err)
		}
		*def.dst = compiled
	}
	return &s, nil
}

// schemaMessage turns a validation failure into a short client message.
func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if rest, ok := strings.CutPrefix(ve.Message, "missing properties: "); ok {
		return fmt.Sprintf("request body must contain %s field", strings.ReplaceAll(rest, "'", `"`))
	}
	field := strings.TrimPrefix(ve.InstanceLocation, "/")
	if field == "" {
		return ve.Message
	}
	return field + ": " + ve.Message
}
