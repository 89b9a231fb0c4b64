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

package reconciler

import "context"

// findOrCreate returns the record found by find. When there is none it
// builds one with create and persists it so it gets a stable id; the bool
// reports whether the record was created.
func findOrCreate[T any](
	ctx context.Context,
	find func(context.Context) (*T, error),
	create func() *T,
	persist func(context.Context, *T) error,
) (*T, bool, error) {
	found, err := find(ctx)
	if err != nil {
		return nil, false, err
	}
	if found != nil {
		return found, false, nil
	}

	rec := create()
	if err := persist(ctx, rec); err != nil {
		return nil, false, err
	}
	return rec, true, nil
}
