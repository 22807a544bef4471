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

const (
	WriteFormatText = "text"
	WriteFormatJSON = "json"
)

type WriteStdout struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty" enum:"WriteStdoutFormatEnum" doc:"the format of each line: text (default) writes the bare CIDR, json writes an object"`
}

type WriteStdoutFormatEnum struct {
	Text string `yaml:"text" doc:"one CIDR per line"`
	JSON string `yaml:"json" doc:"one {\"prefix\",\"family\"} object per line"`
}
