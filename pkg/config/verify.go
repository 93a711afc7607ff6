package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// schemaDoc is the part of a generated schema we check against
type schemaDoc struct {
	Ref  string `json:"$ref"`
	Defs map[string]struct {
		Properties map[string]struct {
			Ref string `json:"$ref"`
		} `json:"properties"`
	} `json:"$defs"`
}

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema.
// It checks every config key is known to the schema and the required fields are set.
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	return verify(cfg, []byte(embeddedSchema))
}

func verify(cfg *Config, schemaData []byte) error {
	var schema schemaDoc
	if err := json.Unmarshal(schemaData, &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	if missing := schema.unknownKeys(defName(schema.Ref), "", configMap); len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("keys missing from schema: %s", strings.Join(missing, ", "))
	}

	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// unknownKeys walks config map and returns dotted keys not described by the schema definition
func (s schemaDoc) unknownKeys(def, prefix string, m map[string]any) []string {
	d, ok := s.Defs[def]
	if !ok {
		return []string{strings.TrimSuffix(prefix, ".") + " (no definition " + def + ")"}
	}
	var res []string
	for k, v := range m {
		prop, ok := d.Properties[k]
		if !ok {
			res = append(res, prefix+k)
			continue
		}
		if sub, isMap := v.(map[string]any); isMap && prop.Ref != "" {
			res = append(res, s.unknownKeys(defName(prop.Ref), prefix+k+".", sub)...)
		}
	}
	return res
}

func defName(ref string) string {
	return strings.TrimPrefix(ref, "#/$defs/")
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	for name, ep := range map[string]EndpointConfig{"news": cfg.API.News, "disaster": cfg.API.Disaster} {
		if ep.Path == "" {
			return fmt.Errorf("api.%s.path is required", name)
		}
		if ep.FilterParam == "" {
			return fmt.Errorf("api.%s.filter_param is required", name)
		}
	}
	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&Config{})
}
