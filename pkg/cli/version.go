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

package cli

import (
	"context"
	"runtime"

	"github.com/urfave/cli/v3"

	"github.com/clusterscope/clusterscope/pkg/header"
	"github.com/clusterscope/clusterscope/pkg/serializer"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	header.Header `json:",inline" yaml:",inline"`

	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

func buildInfo() BuildInfo {
	return BuildInfo{
		Header:    header.New(header.KindBuildInfo, version),
		Name:      name,
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func versionCmd() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Flags: []cli.Flag{
			formatFlag(),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			return serializer.NewWriter(f, cmd.Root().Writer).Serialize(ctx, buildInfo())
		},
	}
}
