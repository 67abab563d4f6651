package maputil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringCoercion(t *testing.T) {
	params := map[string]any{"a": " hi ", "b": 42, "c": true}
	assert.Equal(t, "hi", String(params, "a"))
	assert.Equal(t, "42", String(params, "b"))
	assert.Equal(t, "true", String(params, "c"))
	assert.Equal(t, "", String(params, "missing"))
	assert.Equal(t, "", String(nil, "a"))
}

func TestIntCoercion(t *testing.T) {
	params := map[string]any{"a": 7, "b": 7.9, "c": "8", "d": "junk"}
	assert.Equal(t, 7, Int(params, "a"))
	assert.Equal(t, 7, Int(params, "b"))
	assert.Equal(t, 8, Int(params, "c"))
	assert.Equal(t, 0, Int(params, "d"))
	assert.Equal(t, 0, Int(params, "missing"))
}

func TestFloatCoercion(t *testing.T) {
	params := map[string]any{"a": 1.5, "b": 3, "c": " 2.25 "}
	assert.Equal(t, 1.5, Float(params, "a"))
	assert.Equal(t, 3.0, Float(params, "b"))
	assert.Equal(t, 2.25, Float(params, "c"))
	assert.Equal(t, 0.0, Float(params, "missing"))
}

func TestMaskSecretsRecursive(t *testing.T) {
	doc := map[string]any{
		"provider": "openai",
		"api_key":  "sk-secret",
		"nested": map[string]any{
			"access_token": "tok",
			"model":        "gpt",
		},
		"retry_count": 3,
	}
	masked := MaskSecrets(doc)

	assert.Equal(t, "openai", masked["provider"])
	assert.Equal(t, "********", masked["api_key"])
	nested := masked["nested"].(map[string]any)
	assert.Equal(t, "********", nested["access_token"])
	assert.Equal(t, "gpt", nested["model"])
	assert.Equal(t, 3, masked["retry_count"])

	// 原 map 不被修改
	assert.Equal(t, "sk-secret", doc["api_key"])
}

func TestMaskSecretsSkipsNonStringAndEmpty(t *testing.T) {
	doc := map[string]any{"key_count": 5, "password": ""}
	masked := MaskSecrets(doc)
	assert.Equal(t, 5, masked["key_count"])
	assert.Equal(t, "", masked["password"])
	assert.Nil(t, MaskSecrets(nil))
}
