/*
Copyright The Gamebird Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package store

import (
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// Payloads are validated against these schemas before decoding, so a
// missing required field fails the whole fetch instead of producing a
// partially populated record.

const catalogSchema = `{
	"type": "object",
	"required": ["games"],
	"properties": {
		"games": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "slug", "title", "version"],
				"properties": {
					"id":      {"type": "string", "minLength": 1},
					"slug":    {"type": "string", "minLength": 1},
					"title":   {"type": "string", "minLength": 1},
					"version": {"type": "string"}
				}
			}
		},
		"page":        {"type": "integer"},
		"per_page":    {"type": "integer"},
		"total":       {"type": "integer"},
		"total_pages": {"type": "integer"}
	}
}`

const manifestSchema = `{
	"type": "object",
	"required": ["id", "title", "version", "download"],
	"properties": {
		"id":      {"type": "string", "minLength": 1},
		"slug":    {"type": "string"},
		"title":   {"type": "string", "minLength": 1},
		"version": {"type": "string"},
		"download": {
			"type": "object",
			"required": ["version", "size_bytes", "sha256", "path"],
			"properties": {
				"version":    {"type": "string", "minLength": 1},
				"size_bytes": {"type": "integer", "minimum": 0},
				"sha256":     {"type": "string", "pattern": "^[0-9a-fA-F]{64}$"},
				"path":       {"type": "string", "minLength": 1}
			}
		},
		"changelog": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["version"],
				"properties": {
					"version": {"type": "string"},
					"date":    {"type": "string"},
					"notes":   {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

// validateSchema checks raw against schema and flattens any violations into
// a single error.
func validateSchema(schema string, raw []byte) error {
	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(schema), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msg := ""
	for _, desc := range result.Errors() {
		if msg != "" {
			msg += "; "
		}
		msg += desc.String()
	}
	return errors.New(msg)
}
