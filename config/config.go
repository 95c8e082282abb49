// Copyright 2026 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/gorse-io/neighbors/common/expression"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config is the configuration for the neighbors job.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database"`
	Neighbors NeighborsConfig `mapstructure:"neighbors"`
	Master    MasterConfig    `mapstructure:"master"`
}

// DatabaseConfig is the configuration for the data store and the cache store.
type DatabaseConfig struct {
	DataStore   string `mapstructure:"data_store" validate:"omitempty,data_store"`
	CacheStore  string `mapstructure:"cache_store" validate:"omitempty,cache_store"`
	TablePrefix string `mapstructure:"table_prefix"`
}

// NeighborsConfig is the configuration for neighbor lists.
type NeighborsConfig struct {
	PositiveFeedbackTypes []expression.FeedbackTypeExpression `mapstructure:"positive_feedback_types"`
	Similarity            string                              `mapstructure:"similarity" validate:"oneof=jaccard cosine dice overlap log_likelihood"`
	CosineAlpha           float64                             `mapstructure:"cosine_alpha" validate:"gte=0,lte=1"`
	NumNeighbors          int                                 `mapstructure:"num_neighbors" validate:"gte=0"`
	MinScore              float64                             `mapstructure:"min_score" validate:"gte=0"`
	Users                 bool                                `mapstructure:"users"`
	Items                 bool                                `mapstructure:"items"`
	BatchSize             int                                 `mapstructure:"batch_size" validate:"gt=0"`
}

// MasterConfig is the configuration for the job runner.
type MasterConfig struct {
	NumJobs int `mapstructure:"n_jobs" validate:"gt=0"`
}

func GetDefaultConfig() *Config {
	return &Config{
		Neighbors: NeighborsConfig{
			Similarity:   "jaccard",
			CosineAlpha:  0.5,
			NumNeighbors: 100,
			Users:        true,
			Items:        true,
			BatchSize:    10000,
		},
		Master: MasterConfig{
			NumJobs: 1,
		},
	}
}

func setDefault(v *viper.Viper) {
	defaultConfig := GetDefaultConfig()
	// [database]
	v.SetDefault("database.data_store", defaultConfig.Database.DataStore)
	v.SetDefault("database.cache_store", defaultConfig.Database.CacheStore)
	v.SetDefault("database.table_prefix", defaultConfig.Database.TablePrefix)
	// [neighbors]
	v.SetDefault("neighbors.similarity", defaultConfig.Neighbors.Similarity)
	v.SetDefault("neighbors.cosine_alpha", defaultConfig.Neighbors.CosineAlpha)
	v.SetDefault("neighbors.num_neighbors", defaultConfig.Neighbors.NumNeighbors)
	v.SetDefault("neighbors.min_score", defaultConfig.Neighbors.MinScore)
	v.SetDefault("neighbors.users", defaultConfig.Neighbors.Users)
	v.SetDefault("neighbors.items", defaultConfig.Neighbors.Items)
	v.SetDefault("neighbors.batch_size", defaultConfig.Neighbors.BatchSize)
	// [master]
	v.SetDefault("master.n_jobs", defaultConfig.Master.NumJobs)
}

type configBinding struct {
	key string
	env string
}

var bindings = []configBinding{
	{"database.data_store", "GORSE_DATA_STORE"},
	{"database.cache_store", "GORSE_CACHE_STORE"},
	{"database.table_prefix", "GORSE_TABLE_PREFIX"},
	{"neighbors.similarity", "GORSE_NEIGHBORS_SIMILARITY"},
	{"neighbors.num_neighbors", "GORSE_NEIGHBORS_NUM_NEIGHBORS"},
	{"master.n_jobs", "GORSE_MASTER_JOBS"},
}

// LoadConfig loads configuration from a TOML file. Defaults are used if the
// path is empty. Environment variables override values in the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")
	setDefault(v)
	for _, binding := range bindings {
		lo.Must0(v.BindEnv(binding.key, binding.env))
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Annotatef(err, "read config %s", path)
		}
	}
	var conf Config
	if err := v.Unmarshal(&conf, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, errors.Trace(err)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Trace(err)
	}
	return &conf, nil
}
