package http

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

var (
	createSchema   = mustCompile("schemas/create.json")
	updateSchema   = mustCompile("schemas/update.json")
	completeSchema = mustCompile("schemas/complete.json")
)

func mustCompile(name string) *jsonschema.Schema {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("missing embedded schema %s: %v", name, err))
	}
	return jsonschema.MustCompileString(name, string(data))
}

// validateBody checks the raw request body against a schema. Schema
// violations are malformed input and surface as hard 400s; the domain
// validators never see them.
func validateBody(schema *jsonschema.Schema, raw []byte) error {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("request does not match schema: %w", err)
	}
	return nil
}
