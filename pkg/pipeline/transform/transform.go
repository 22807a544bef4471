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

package transform

import (
	"github.com/netobserv/asn-ranges/pkg/api"
	"github.com/netobserv/asn-ranges/pkg/pipeline/extract/origin"
	log "github.com/sirupsen/logrus"
)

// Transformer enriches the merged ingest result before aggregation.
type Transformer interface {
	Transform(res *origin.Result)
}

type transformNone struct {
}

// Transform leaves the result untouched
func (t *transformNone) Transform(_ *origin.Result) {
}

// NewTransformNone create a new transform
func NewTransformNone() (Transformer, error) {
	log.Debugf("entering  NewTransformNone")
	return &transformNone{}, nil
}

// NewTransformer picks the enrichment configured by params.
func NewTransformer(params api.TransformSharedUpstream, ignorePrivateASN bool) (Transformer, error) {
	if !params.Enable {
		return NewTransformNone()
	}
	return NewTransformSharedUpstream(params, ignorePrivateASN)
}
