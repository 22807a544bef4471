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
	FormatAuto    = "auto"
	FormatMRT     = "mrt"
	FormatBGPDump = "bgpdump"
)

type IngestFile struct {
	Filename string `yaml:"filename" json:"filename" doc:"path of the routing table dump, optionally compressed (.gz, .zst, .bz2)"`
	Format   string `yaml:"format,omitempty" json:"format,omitempty" enum:"IngestFormatEnum" doc:"dump format; auto picks bgpdump for .txt and .dump names and mrt otherwise"`
}

type IngestFormatEnum struct {
	Auto    string `yaml:"auto" doc:"detect from the file name"`
	MRT     string `yaml:"mrt" doc:"binary MRT (TABLE_DUMPv2 or BGP4MP)"`
	BGPDump string `yaml:"bgpdump" doc:"bgpdump -m one line per element text"`
}

type IngestSources struct {
	Files            []string `yaml:"files" json:"files" doc:"routing table dumps to ingest"`
	Format           string   `yaml:"format,omitempty" json:"format,omitempty" enum:"IngestFormatEnum" doc:"dump format applied to every file"`
	Workers          int      `yaml:"workers,omitempty" json:"workers,omitempty" doc:"number of sources parsed concurrently (default: number of CPUs)"`
	IgnorePrivateASN bool     `yaml:"ignorePrivateAsn,omitempty" json:"ignorePrivateAsn,omitempty" doc:"drop announcements whose origin set contains a private ASN"`
}

func (s *IngestSources) GetWorkers(defaultWorkers int) int {
	if s.Workers > 0 {
		return s.Workers
	}
	return defaultWorkers
}
