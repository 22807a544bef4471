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
	DefaultSharedUpstreamMaxHops    = 4
	DefaultSharedUpstreamMinSources = 2
)

type TransformSharedUpstream struct {
	Enable     bool `yaml:"enable,omitempty" json:"enable,omitempty" doc:"credit transit ASNs shared by every path towards an origin"`
	MaxHops    int  `yaml:"maxHops,omitempty" json:"maxHops,omitempty" doc:"number of trailing path hops considered (default: 4)"`
	MinSources int  `yaml:"minSources,omitempty" json:"minSources,omitempty" doc:"distinct sources required before a suffix is credited (default: 2)"`
}

func (t *TransformSharedUpstream) GetMaxHops() int {
	if t.MaxHops > 0 {
		return t.MaxHops
	}
	return DefaultSharedUpstreamMaxHops
}

func (t *TransformSharedUpstream) GetMinSources() int {
	if t.MinSources > 0 {
		return t.MinSources
	}
	return DefaultSharedUpstreamMinSources
}

type TransformOverlap struct {
	Enable bool `yaml:"enable,omitempty" json:"enable,omitempty" doc:"drop space that non-target ASNs announce more specifically"`
}
