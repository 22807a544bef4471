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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "net/http/pprof"

	jsoniter "github.com/json-iterator/go"
	"github.com/netobserv/asn-ranges/pkg/api"
	"github.com/netobserv/asn-ranges/pkg/config"
	"github.com/netobserv/asn-ranges/pkg/operational"
	"github.com/netobserv/asn-ranges/pkg/pipeline"
	"github.com/netobserv/asn-ranges/pkg/pipeline/utils"
	"github.com/netobserv/asn-ranges/pkg/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	buildVersion       = "unknown"
	buildDate          = "unknown"
	cfgFile            string
	logLevel           string
	envPrefix          = "ASN_RANGES"
	defaultLogFileName = ".asn-ranges"
	opts               config.Options
)

// rootCmd represents the root command
var rootCmd = &cobra.Command{
	Use:   "asn-ranges [flags] ASN...",
	Short: "Print the address blocks originated by a set of ASNs according to BGP RIB dumps",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		os.Exit(run(args))
	},
}

// initConfig use config file and ENV variables if set.
func initConfig() {
	v := viper.New()

	if cfgFile != "" {
		// Use config file from the flag.
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		// Search config in home directory with name ".asn-ranges" (without extension).
		v.AddConfigPath(home)
		v.SetConfigName(defaultLogFileName)
	}

	// Read environment variables that match prefix
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	// If a config file is found, read it in.
	cfgErr := v.ReadInConfig()

	bindFlags(rootCmd, v)

	// initialize logger
	initLogger()

	var notFound viper.ConfigFileNotFoundError
	if cfgErr != nil && (cfgFile != "" || !errors.As(cfgErr, &notFound)) {
		log.Errorf("Read config error: %v", cfgErr)
	}
}

func initLogger() {
	ll, err := log.ParseLevel(logLevel)
	if err != nil {
		ll = log.ErrorLevel
	}
	log.SetLevel(ll)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableColors: false, FullTimestamp: true, PadLevelText: true, DisableQuote: true})
}

// dumpConfig logs the options, secrets masked; stdout only carries the ranges.
func dumpConfig(opts *config.Options) {
	redacted := *opts
	redacted.Cache = opts.Cache.Redacted()
	configAsJSON, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(&redacted, "", "    ")
	if err != nil {
		panic(fmt.Sprintf("error dumping config: %v", err))
	}
	log.Debugf("Using configuration:\n%s", configAsJSON)
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if strings.Contains(f.Name, ".") || strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(f.Name))
			_ = v.BindEnv(f.Name, fmt.Sprintf("%s_%s", envPrefix, envVarSuffix))
		}

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(f.Name) {
			if f.Value.Type() == "stringSlice" {
				_ = cmd.Flags().Set(f.Name, strings.Join(v.GetStringSlice(f.Name), ","))
				return
			}
			val := v.Get(f.Name)
			switch val.(type) {
			case bool, uint, string, int32, int16, int8, int, uint32, uint64, int64, float64, float32:
				_ = cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val))
			default:
				var jsonNew = jsoniter.ConfigCompatibleWithStandardLibrary
				b, err := jsonNew.Marshal(&val)
				if err != nil {
					log.Fatalf("can't parse flag %s into json with value %v got error %s", f.Name, val, err)
					return
				}
				_ = cmd.Flags().Set(f.Name, string(b))
			}
		}
	})
}

func initFlags() {
	cobra.OnInitialize(initConfig)
	rootCmd.Version = fmt.Sprintf("%s (%s)", buildVersion, buildDate)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("config file (default is $HOME/%s)", defaultLogFileName))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "Log level: debug, info, warning, error")

	flags := rootCmd.Flags()
	flags.StringSliceVar(&opts.MRTFiles, "mrt-file", []string{config.DefaultMRTFile}, "RIB dump to read, repeatable; .gz, .bz2 and .zst are decompressed")
	flags.StringVar(&opts.Format, "format", api.FormatAuto, fmt.Sprintf("Source format: %s", strings.Join(api.GetEnumValues(api.IngestFormatEnum{}), ", ")))
	flags.IntVar(&opts.Workers, "workers", 0, "Number of sources read in parallel (default: number of CPUs)")
	flags.BoolVar(&opts.IgnorePrivateASN, "ignore-private-asn", false, "Skip announcements whose origin set contains a private ASN")
	flags.BoolVar(&opts.SharedUpstream.Enable, "shared-upstream", false, "Credit the upstream ASNs all sources agree on near the origin")
	flags.IntVar(&opts.SharedUpstream.MaxHops, "shared-upstream.max-hops", api.DefaultSharedUpstreamMaxHops, "Hops kept from the origin side of each path")
	flags.IntVar(&opts.SharedUpstream.MinSources, "shared-upstream.min-sources", api.DefaultSharedUpstreamMinSources, "Distinct sources needed before crediting upstreams")
	flags.BoolVar(&opts.ExcludeOverlap, "exclude-overlap", false, "Remove the more specific blocks announced only by other ASNs")
	flags.StringVar(&opts.Cache.Dir, "cache", "", "Cache directory (default: disabled)")
	flags.StringVar(&opts.Cache.Type, "cache.type", "", fmt.Sprintf("Cache store: %s", strings.Join(api.GetEnumValues(api.CacheTypeEnum{}), ", ")))
	flags.StringVar(&opts.Cache.S3.Endpoint, "cache.s3.endpoint", "", "S3 endpoint")
	flags.StringVar(&opts.Cache.S3.Bucket, "cache.s3.bucket", "", "S3 bucket")
	flags.StringVar(&opts.Cache.S3.Prefix, "cache.s3.prefix", "", "S3 object name prefix")
	flags.StringVar(&opts.Cache.S3.AccessKeyId, "cache.s3.access-key-id", "", "S3 access key id")
	flags.StringVar(&opts.Cache.S3.SecretAccessKey, "cache.s3.secret-access-key", "", "S3 secret access key")
	flags.BoolVar(&opts.Cache.S3.Secure, "cache.s3.secure", true, "Use TLS towards the S3 endpoint")
	flags.StringVar(&opts.Output, "output", api.WriteFormatText, fmt.Sprintf("Output format: %s", strings.Join(api.GetEnumValues(api.WriteStdoutFormatEnum{}), ", ")))
	flags.StringVar(&opts.Metrics.Address, "metrics.address", "", "Metrics server address")
	flags.IntVar(&opts.Metrics.Port, "metrics.port", 0, "Metrics server port (default: disabled)")
	flags.StringVar(&opts.Metrics.Prefix, "metrics.prefix", "", "Prefix of the operational metric names")
	flags.BoolVar(&opts.Metrics.NoPanic, "metrics.no-panic", false, "Keep running when the metrics server fails")
	flags.StringVar(&opts.Health.Address, "health.address", "0.0.0.0", "Health server address")
	flags.StringVar(&opts.Health.Port, "health.port", "", "Health server port (default: disabled)")
	flags.IntVar(&opts.Profile.Port, "profile.port", 0, "Go pprof tool port (default: disabled)")
}

func main() {
	// Initialize flags (command line parameters)
	initFlags()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(args []string) int {
	// Initial log message
	log.Infof("Starting %s: build version %s, build date %s", filepath.Base(os.Args[0]), buildVersion, buildDate)

	// Dump configuration
	dumpConfig(&opts)

	cfg, err := config.ParseConfig(&opts, args)
	if err != nil {
		log.Errorf("error in parsing configuration: %v", err)
		return 1
	}

	// Setup (threads) exit manager
	ctx := utils.SetupElegantExit(context.Background())
	opMetrics := operational.NewMetrics(cfg.Metrics.Prefix)
	promServer := prometheus.InitializePrometheus(&cfg.Metrics, opMetrics.Registry())

	mainPipeline, err := pipeline.NewPipeline(&cfg, opMetrics)
	if err != nil {
		log.Errorf("failed to initialize pipeline: %s", err)
		return 1
	}

	if opts.Profile.Port != 0 {
		go func() {
			log.WithField("port", opts.Profile.Port).Info("starting PProf HTTP listener")
			log.WithError(http.ListenAndServe(fmt.Sprintf(":%d", opts.Profile.Port), nil)).
				Error("PProf HTTP listener stopped working")
		}()
	}

	// Start health report server
	var healthServer *http.Server
	if opts.Health.Port != "" {
		healthServer = operational.NewHealthServer(&opts, mainPipeline.IsAlive(), mainPipeline.IsReady())
	}

	err = mainPipeline.Run(ctx)

	if promServer != nil {
		_ = promServer.Shutdown(context.Background())
	}
	if healthServer != nil {
		_ = healthServer.Shutdown(context.Background())
	}
	if err != nil {
		log.Errorf("%v", err)
		fmt.Fprintf(os.Stderr, "asn-ranges: %v\n", err)
		return 1
	}
	log.Debugf("exiting main run")
	return 0
}
