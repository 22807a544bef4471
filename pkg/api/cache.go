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
	CacheTypeFile = "file"
	CacheTypeS3   = "s3"
)

type Cache struct {
	Type string  `yaml:"type,omitempty" json:"type,omitempty" enum:"CacheTypeEnum" doc:"cache store; empty disables the cache"`
	Dir  string  `yaml:"dir,omitempty" json:"dir,omitempty" doc:"directory holding the cache records (file store)"`
	S3   CacheS3 `yaml:"s3,omitempty" json:"s3,omitempty" doc:"S3 compatible object store settings (s3 store)"`
}

type CacheTypeEnum struct {
	File string `yaml:"file" doc:"records kept as files in a local directory"`
	S3   string `yaml:"s3" doc:"records kept as objects in an S3 compatible bucket"`
}

type CacheS3 struct {
	Endpoint        string `yaml:"endpoint" json:"endpoint" doc:"address of s3 server"`
	AccessKeyId     string `yaml:"accessKeyId" json:"accessKeyId" doc:"username to connect to server"`
	SecretAccessKey string `yaml:"secretAccessKey" json:"secretAccessKey" doc:"password to connect to server"`
	Bucket          string `yaml:"bucket" json:"bucket" doc:"bucket into which to store records"`
	Prefix          string `yaml:"prefix,omitempty" json:"prefix,omitempty" doc:"object name prefix"`
	Secure          bool   `yaml:"secure,omitempty" json:"secure,omitempty" doc:"use TLS to reach the server"`
}

func (c *Cache) Enabled() bool {
	return c.Type != ""
}

// Redacted returns a copy safe to log, with the S3 secret masked.
func (c *Cache) Redacted() Cache {
	out := *c
	if out.S3.SecretAccessKey != "" {
		out.S3.SecretAccessKey = "***"
	}
	return out
}
