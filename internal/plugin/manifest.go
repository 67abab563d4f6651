package plugin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const (
	manifestJSON = "manifest.json"
	manifestYAML = "manifest.yaml"

	defaultVersion = "1.0.0"
	defaultBackend = "builtin"
)

// Manifest 描述一个插件。id 与 path 由注册表从目录注入，文件内不读取。
type Manifest struct {
	ID           string `json:"id" yaml:"-"`
	Name         string `json:"name" yaml:"name"`
	Version      string `json:"version" yaml:"version"`
	BackendEntry string `json:"backend_file" yaml:"backend_file"`
	Path         string `json:"path" yaml:"-"`
}

// manifestSchema 约束清单文件的基本形状；name 为唯一必填字段。
const manifestSchema = `{
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string", "minLength": 1},
		"version": {"type": "string"},
		"backend_file": {"type": "string"}
	}
}`

func compileManifestSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("manifest.schema.json", strings.NewReader(manifestSchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("manifest.schema.json")
}

// readManifest 读取并校验 <dir>/manifest.json（或 manifest.yaml）。
// 返回 (manifest, found, err)：文件不存在时 found=false 且无错误
// （该目录"不是插件"）；存在但非法时返回错误。
func readManifest(dir string, schema *jsonschema.Schema) (Manifest, bool, error) {
	var (
		doc map[string]any
		src string
	)
	if raw, err := os.ReadFile(filepath.Join(dir, manifestJSON)); err == nil {
		src = manifestJSON
		if err := json.Unmarshal(raw, &doc); err != nil {
			return Manifest{}, true, fmt.Errorf("parse %s failed: %w", manifestJSON, err)
		}
	} else if raw, err := os.ReadFile(filepath.Join(dir, manifestYAML)); err == nil {
		src = manifestYAML
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		if err := dec.Decode(&doc); err != nil {
			return Manifest{}, true, fmt.Errorf("parse %s failed: %w", manifestYAML, err)
		}
	} else {
		return Manifest{}, false, nil
	}

	if schema != nil {
		if err := schema.Validate(normalizeForSchema(doc)); err != nil {
			return Manifest{}, true, fmt.Errorf("%s schema violation: %w", src, err)
		}
	}

	m := Manifest{
		ID:           filepath.Base(dir),
		Name:         stringField(doc, "name"),
		Version:      stringField(doc, "version"),
		BackendEntry: stringField(doc, "backend_file"),
		Path:         dir,
	}
	if m.Name == "" {
		return Manifest{}, true, fmt.Errorf("%s missing required field name", src)
	}
	if m.Version == "" {
		m.Version = defaultVersion
	}
	if m.BackendEntry == "" {
		m.BackendEntry = defaultBackend
	}
	return m, true, nil
}

func stringField(doc map[string]any, key string) string {
	raw, ok := doc[key]
	if !ok {
		return ""
	}
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// normalizeForSchema 把 yaml 解码出的 map[interface{}]interface{} 统一为
// jsonschema 可校验的 map[string]any。
func normalizeForSchema(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			out[k] = normalizeForSchema(child)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]any, len(val))
		for k, child := range val {
			key, ok := k.(string)
			if !ok {
				continue
			}
			out[key] = normalizeForSchema(child)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = normalizeForSchema(child)
		}
		return out
	default:
		return val
	}
}
