package manifest

import (
	"encoding/json"
	"fmt"

	"github.com/fulmenhq/gofulmen/schema"
	"gopkg.in/yaml.v3"

	schemasassets "github.com/3leaps/nimbusview/internal/assets/schemas"
)

// ValidateSchema validates raw manifest bytes against the embedded
// view-manifest JSON schema.
//
// This is the strict structural check used by editors, CI, and the
// doctor command. Load performs its own field-level validation with
// friendlier messages; ValidateSchema reports every structural
// violation with a JSON pointer.
//
// The input may be YAML or JSON; YAML is converted before validation.
func ValidateSchema(data []byte) error {
	jsonData, err := manifestToJSON(data)
	if err != nil {
		return err
	}
	return validateManifestRaw(jsonData)
}

// validateManifestRaw validates raw JSON data against the view manifest schema.
func validateManifestRaw(jsonData []byte) error {
	if len(schemasassets.ViewManifestSchema) == 0 {
		return fmt.Errorf("embedded view-manifest schema is empty")
	}

	validator, err := schema.NewValidator(schemasassets.ViewManifestSchema)
	if err != nil {
		return fmt.Errorf("failed to compile view manifest schema: %w", err)
	}

	diags, err := validator.ValidateJSON(jsonData)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if len(diags) == 0 {
		return nil
	}

	var errs ValidationErrors
	for _, d := range diags {
		if d.Severity == schema.SeverityError {
			errs = append(errs, ValidationError{
				Path:    d.Pointer,
				Message: d.Message,
			})
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}

// manifestToJSON converts manifest data to JSON. YAML input is parsed and
// re-marshalled; JSON input round-trips unchanged.
func manifestToJSON(data []byte) ([]byte, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML in manifest: %w", err)
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to convert manifest to JSON: %w", err)
	}

	return jsonData, nil
}
