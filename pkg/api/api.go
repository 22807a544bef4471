/*
 * Copyright (C) 2025 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package api

const TagYaml = "yaml"
const TagDoc = "doc"
const TagEnum = "enum"

// Note: items beginning with doc: "## title" are top level items that get divided into sections inside api.md.

type API struct {
	IngestFile              IngestFile              `yaml:"file" doc:"## Ingest file API\nFollowing is the supported API format for a single routing table source:\n"`
	IngestSources           IngestSources           `yaml:"sources" doc:"## Ingest sources API\nFollowing is the supported API format for the parallel ingest of several sources:\n"`
	TransformSharedUpstream TransformSharedUpstream `yaml:"sharedUpstream" doc:"## Transform shared upstream API\nFollowing is the supported API format for the shared upstream attribution:\n"`
	TransformOverlap        TransformOverlap        `yaml:"overlap" doc:"## Transform overlap API\nFollowing is the supported API format for the overlap exclusion filter:\n"`
	Cache                   Cache                   `yaml:"cache" doc:"## Cache API\nFollowing is the supported API format for the ranges cache:\n"`
	WriteStdout             WriteStdout             `yaml:"stdout" doc:"## Write Standard Output\nFollowing is the supported API format for writing to standard output:\n"`
}
