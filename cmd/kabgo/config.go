package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/darkclainer/kabgo"
	"github.com/darkclainer/kabgo/pkg/writer"
)

type Config struct {
	ZapConfig string
	// List prints categories and exits
	List bool

	kabgo.Options `mapstructure:",squash"`
}

func (c *Config) ZapConf() (*zap.Config, error) {
	if c.ZapConfig == "" {
		defaultConf := zap.NewDevelopmentConfig()
		return &defaultConf, nil
	}
	var zapConf zap.Config
	if err := json.Unmarshal([]byte(c.ZapConfig), &zapConf); err != nil {
		return nil, err
	}
	return &zapConf, nil
}

func newFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("kabgo", pflag.ContinueOnError)
	flags.StringP("config", "c", "kabgo.yaml", "path to local config")
	flags.Bool("list", false, "print categories of the dictionary and exit")
	flags.StringSliceP("category", "k", nil, "category name or slug to collect, all categories if omitted")
	flags.StringP("output", "o", "", "output file, '-' for stdout, derived from categories if omitted")
	flags.StringP("format", "f", writer.FormatCSV, "output format: tsv, csv or json")
	flags.Bool("append", false, "append to output file instead of overwriting it")
	flags.Bool("keep-going", false, "log failed pages and continue")
	flags.String("filter", "", "tengo expression, only entries for which it is true are written")
	flags.String("cache", "", "directory of page cache")
	return flags
}

// bindings maps flags to config keys that differ from flag names
var bindings = map[string]string{
	"category":   "collector.categories",
	"keep-going": "collector.keepgoing",
	"filter":     "collector.filter",
	"cache":      "cached.path",
}

func getConfig(args []string) (*Config, *zap.Config, error) {
	v := viper.New()
	flags := newFlagSet()
	if err := flags.Parse(args); err != nil {
		return nil, nil, err
	}
	for name, key := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, nil, err
		}
	}
	for _, name := range []string{"config", "list", "output", "format", "append"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return nil, nil, err
		}
	}

	v.SetEnvPrefix("KABGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("remote.retries", 3) // nolint:gomnd // same as site-friendly default
	v.SetDefault("remote.maxworkers", 1)
	v.SetDefault("collector.entriesperpage", 10) // nolint:gomnd // site shows 10 entries per page
	for _, key := range []string{
		"zapconfig",
		"remote.host", "remote.protocol", "remote.timeout", "remote.retries",
		"remote.useragent", "remote.indexpath",
		"cached.path", "cached.inmemory", "cached.ttl",
		"collector.delay", "collector.entriesperpage",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, nil, err
		}
	}

	configPath := v.GetString("config")
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", configPath)
	} else if flags.Changed("config") || !isConfigMissing(err) {
		// only absent default config is fine
		return nil, nil, fmt.Errorf("can not read config %s: %w", configPath, err)
	}

	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, nil, fmt.Errorf("error while unmarshaling config: %w", err)
	}
	zapConf, err := conf.ZapConf()
	if err != nil {
		return nil, nil, err
	}
	return &conf, zapConf, nil
}

func isConfigMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
