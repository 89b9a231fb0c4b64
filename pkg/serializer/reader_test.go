// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string            `json:"name" yaml:"name"`
	Nodes *int              `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Data  map[string]string `json:"data" yaml:"data"`
}

func TestWriter_Serialize(t *testing.T) {
	nodes := 3
	in := record{Name: "alpha", Nodes: &nodes, Data: map[string]string{"cpu": "0.5"}}

	tests := []struct {
		format Format
		want   []string
	}{
		{format: FormatJSON, want: []string{`"name": "alpha"`, `"nodes": 3`, `"cpu": "0.5"`}},
		{format: FormatYAML, want: []string{"name: alpha", "nodes: 3", `cpu: "0.5"`}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(tt.format, &buf).Serialize(context.Background(), in))
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestNewWriter_UnknownFormatDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("table"), &buf)

	require.NoError(t, w.Serialize(context.Background(), record{Name: "alpha"}))
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestNewFileWriterOrStdout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	w := NewFileWriterOrStdout(FormatYAML, path)
	require.NoError(t, w.Serialize(context.Background(), record{Name: "alpha"}))
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: alpha")

	stdout := NewFileWriterOrStdout(FormatJSON, "  ")
	assert.Equal(t, os.Stdout, stdout.output)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("inv.YAML"))
	assert.Equal(t, FormatYAML, FormatFromPath("inv.yml"))
	assert.Equal(t, FormatJSON, FormatFromPath("inv.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("inv"))
	assert.ElementsMatch(t, []string{"json", "yaml"}, SupportedFormats())
}

// aliased decodes "id" or "key" into Key through a custom JSON decoder.
type aliased struct {
	Key string
}

func (a *aliased) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID  string `json:"id"`
		Key string `json:"key"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	a.Key = raw.Key
	if a.Key == "" {
		a.Key = raw.ID
	}
	return nil
}

func TestReader_YAMLHonoursCustomJSONDecoding(t *testing.T) {
	r, err := NewReader(FormatYAML, strings.NewReader("- id: one\n- key: two\n"))
	require.NoError(t, err)

	var out []aliased
	require.NoError(t, r.Deserialize(&out))
	assert.Equal(t, []aliased{{Key: "one"}, {Key: "two"}}, out)
}

func TestReader_Errors(t *testing.T) {
	_, err := NewReader(Format("xml"), strings.NewReader(""))
	require.Error(t, err)

	r, err := NewReader(FormatJSON, strings.NewReader("{not json"))
	require.NoError(t, err)
	var v map[string]any
	assert.Error(t, r.Deserialize(&v))

	var nilReader *Reader
	assert.Error(t, nilReader.Deserialize(&v))
	assert.NoError(t, nilReader.Close())
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "rec.yaml")
	jsonPath := filepath.Join(dir, "rec.json")
	require.NoError(t, os.WriteFile(yamlPath, []byte("name: alpha\ndata:\n  cpu: \"1\"\n"), 0o600))
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"name":"beta"}`), 0o600))

	got, err := FromFile[record](yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, "1", got.Data["cpu"])

	got, err = FromFile[record](jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "beta", got.Name)

	_, err = FromFile[record](filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
