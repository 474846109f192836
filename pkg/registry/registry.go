// pkg/registry/registry.go
package registry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"youthunion-chat/internal/common/validation"

	"gopkg.in/yaml.v3"
)

var schema = validation.MustCompile(registrySchema)

// LoadRegistry reads a YAML (.yaml/.yml) or JSON registry file and checks it
// against the registry schema.
func LoadRegistry(path string) (*IntentRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON validates and decodes a JSON registry document.
func ParseJSON(data []byte) (*IntentRegistry, error) {
	result, err := schema.ValidateJSON(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("registry does not match schema: %s", result.Error())
	}

	var reg IntentRegistry
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return &reg, nil
}

// ParseYAML validates and decodes a YAML registry document.
func ParseYAML(data []byte) (*IntentRegistry, error) {
	var generic interface{}
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("parse registry yaml: %w", err)
	}

	result, err := schema.Validate(generic)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, fmt.Errorf("registry does not match schema: %s", result.Error())
	}

	var reg IntentRegistry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&reg); err != nil {
		return nil, fmt.Errorf("decode registry: %w", err)
	}
	return &reg, nil
}

// MarshalYAML renders a registry the way LoadRegistry expects it.
func MarshalYAML(reg *IntentRegistry) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(reg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
