/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

func TestDeckConformsToSchema(t *testing.T) {
	schemaPath := filepath.Join("..", "..", "docs", "deck.schema.json")
	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	schemaLoader := gojsonschema.NewBytesLoader(schemaBytes)

	for _, s := range samples {
		data, err := json.Marshal(Parse(s))
		if err != nil {
			t.Fatalf("marshal deck: %v", err)
		}
		result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
		if err != nil {
			t.Fatalf("schema validate error: %v", err)
		}
		if !result.Valid() {
			for _, e := range result.Errors() {
				t.Logf("schema error: %s", e)
			}
			t.Fatalf("deck for %q does not conform to schema", s)
		}
	}
}
