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

package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/netobserv/asn-ranges/pkg/api"
	"github.com/netobserv/asn-ranges/pkg/asn"
	"github.com/sirupsen/logrus"
)

const DefaultMRTFile = "./rib"

var ErrNoASN = errors.New("at least one ASN is required")

// Options is the raw command line and config file content.
type Options struct {
	MRTFiles         []string                    `yaml:"mrtFiles,omitempty" json:"mrtFiles,omitempty"`
	Format           string                      `yaml:"format,omitempty" json:"format,omitempty"`
	Workers          int                         `yaml:"workers,omitempty" json:"workers,omitempty"`
	IgnorePrivateASN bool                        `yaml:"ignorePrivateAsn,omitempty" json:"ignorePrivateAsn,omitempty"`
	SharedUpstream   api.TransformSharedUpstream `yaml:"sharedUpstream,omitempty" json:"sharedUpstream,omitempty"`
	ExcludeOverlap   bool                        `yaml:"excludeOverlap,omitempty" json:"excludeOverlap,omitempty"`
	Cache            api.Cache                   `yaml:"cache,omitempty" json:"cache,omitempty"`
	Output           string                      `yaml:"output,omitempty" json:"output,omitempty"`
	Metrics          MetricsSettings             `yaml:"metrics,omitempty" json:"metrics,omitempty"`
	Health           Health                      `yaml:"health,omitempty" json:"health,omitempty"`
	Profile          Profile                     `yaml:"profile,omitempty" json:"profile,omitempty"`
}

type Health struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	Port    string `yaml:"port,omitempty" json:"port,omitempty"`
}

type Profile struct {
	Port int `yaml:"port,omitempty" json:"port,omitempty"`
}

// MetricsSettings is related to the prometheus server exposing the operational metrics.
// The server is started only when Port is set.
type MetricsSettings struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty" doc:"address to expose \"/metrics\" endpoint"`
	Port    int    `yaml:"port,omitempty" json:"port,omitempty" doc:"port number to expose \"/metrics\" endpoint"`
	Prefix  string `yaml:"prefix,omitempty" json:"prefix,omitempty" doc:"prefix for names of the operational metrics"`
	NoPanic bool   `yaml:"noPanic,omitempty" json:"noPanic,omitempty"`
}

// Config is the validated run configuration.
type Config struct {
	ASNs           asn.Set
	Sources        api.IngestSources
	SharedUpstream api.TransformSharedUpstream
	Overlap        api.TransformOverlap
	Cache          api.Cache
	Write          api.WriteStdout
	Metrics        MetricsSettings
	Health         Health
}

// ParseConfig validates the options and the positional ASN arguments.
func ParseConfig(opts *Options, args []string) (Config, error) {
	out := Config{
		Sources: api.IngestSources{
			Files:            opts.MRTFiles,
			Format:           opts.Format,
			Workers:          opts.Workers,
			IgnorePrivateASN: opts.IgnorePrivateASN,
		},
		SharedUpstream: opts.SharedUpstream,
		Overlap:        api.TransformOverlap{Enable: opts.ExcludeOverlap},
		Cache:          opts.Cache,
		Write:          api.WriteStdout{Format: opts.Output},
		Metrics:        opts.Metrics,
		Health:         opts.Health,
	}

	if len(args) == 0 {
		return out, ErrNoASN
	}
	asns := make([]uint32, 0, len(args))
	for _, arg := range args {
		v, err := asn.Parse(arg)
		if err != nil {
			return out, err
		}
		asns = append(asns, v)
	}
	out.ASNs = asn.NewSet(asns...)
	logrus.Debugf("requested ASNs = %v", out.ASNs)

	if len(out.Sources.Files) == 0 {
		out.Sources.Files = []string{DefaultMRTFile}
	}
	out.Sources.Files = uniqueSources(out.Sources.Files)
	if out.Sources.Format == "" {
		out.Sources.Format = api.FormatAuto
	}
	if !api.IsEnumValue(api.IngestFormatEnum{}, out.Sources.Format) {
		return out, fmt.Errorf("invalid format %q, expected one of %v", out.Sources.Format, api.GetEnumValues(api.IngestFormatEnum{}))
	}
	if out.Sources.Workers < 0 {
		return out, fmt.Errorf("invalid workers %d", out.Sources.Workers)
	}

	if out.Write.Format == "" {
		out.Write.Format = api.WriteFormatText
	}
	if !api.IsEnumValue(api.WriteStdoutFormatEnum{}, out.Write.Format) {
		return out, fmt.Errorf("invalid output %q, expected one of %v", out.Write.Format, api.GetEnumValues(api.WriteStdoutFormatEnum{}))
	}

	if out.SharedUpstream.MaxHops < 0 || out.SharedUpstream.MinSources < 0 {
		return out, fmt.Errorf("invalid shared upstream settings: max hops %d, min sources %d",
			out.SharedUpstream.MaxHops, out.SharedUpstream.MinSources)
	}
	out.SharedUpstream.MaxHops = out.SharedUpstream.GetMaxHops()
	out.SharedUpstream.MinSources = out.SharedUpstream.GetMinSources()

	if err := validateCache(&out.Cache); err != nil {
		return out, err
	}
	logged := out
	logged.Cache = out.Cache.Redacted()
	logrus.Debugf("config = %+v", logged)
	return out, nil
}

// uniqueSources drops files already listed under another spelling of the
// same absolute path. The first spelling is kept, in command line order.
func uniqueSources(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		key, err := filepath.Abs(f)
		if err != nil {
			key = filepath.Clean(f)
		}
		if _, ok := seen[key]; ok {
			logrus.Debugf("ignoring duplicate source %s", f)
			continue
		}
		seen[key] = struct{}{}
		out = append(out, f)
	}
	return out
}

func validateCache(c *api.Cache) error {
	if c.Type == "" && c.Dir != "" {
		c.Type = api.CacheTypeFile
	}
	switch c.Type {
	case "":
		return nil
	case api.CacheTypeFile:
		if c.Dir == "" {
			return fmt.Errorf("file cache requires a directory")
		}
	case api.CacheTypeS3:
		if c.S3.Endpoint == "" || c.S3.Bucket == "" {
			return fmt.Errorf("s3 cache requires an endpoint and a bucket")
		}
	default:
		return fmt.Errorf("invalid cache type %q, expected one of %v", c.Type, api.GetEnumValues(api.CacheTypeEnum{}))
	}
	return nil
}
