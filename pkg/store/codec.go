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

package store

import (
	"encoding/json"
	"time"

	cserrors "github.com/clusterscope/clusterscope/pkg/errors"
)

func encodeJSON(v any, record, column, id string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", cserrors.WrapWithContext(cserrors.ErrCodeSerialization,
			"failed to encode "+record+" column", err,
			map[string]any{"column": column, "id": id})
	}
	return string(b), nil
}

func decodeJSON(data string, v any, record, column, id string) error {
	if data == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return cserrors.WrapWithContext(cserrors.ErrCodeSerialization,
			"failed to decode "+record+" column", err,
			map[string]any{"column": column, "id": id})
	}
	return nil
}

// Timestamps are stored as UTC RFC 3339 text so that both drivers sort and
// compare them the same way.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s, column, id string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, cserrors.WrapWithContext(cserrors.ErrCodeSerialization,
			"failed to parse timestamp", err,
			map[string]any{"column": column, "id": id})
	}
	return t, nil
}
