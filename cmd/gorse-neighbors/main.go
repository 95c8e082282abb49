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

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/gorse-io/neighbors/base/log"
	"github.com/gorse-io/neighbors/cmd/version"
	"github.com/gorse-io/neighbors/config"
	"github.com/gorse-io/neighbors/dataset"
	"github.com/gorse-io/neighbors/logics"
	"github.com/gorse-io/neighbors/storage/cache"
	"github.com/gorse-io/neighbors/storage/data"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var neighborsCommand = &cobra.Command{
	Use:   "gorse-neighbors",
	Short: "Compute neighbors of users and items by shared feedback.",
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.PersistentFlags()
		// Show version
		if showVersion, _ := flags.GetBool("version"); showVersion {
			fmt.Println(version.BuildInfo())
			return
		}
		// setup logger
		debug, _ := flags.GetBool("debug")
		log.SetLogger(flags, debug)
		defer func() { _ = log.Logger().Sync() }()

		// load config
		configPath, _ := flags.GetString("config")
		log.Logger().Info("load config", zap.String("config", configPath))
		conf, err := config.LoadConfig(configPath)
		if err != nil {
			log.Logger().Fatal("failed to load config", zap.Error(err))
		}
		if flags.Changed("jobs") {
			conf.Master.NumJobs, _ = flags.GetInt("jobs")
		}

		// serve metrics
		if port, _ := flags.GetInt("metrics-port"); port > 0 {
			go func() {
				mux := http.NewServeMux()
				mux.Handle("/metrics", promhttp.Handler())
				addr := fmt.Sprintf(":%d", port)
				log.Logger().Info("start metrics server", zap.String("address", addr))
				if err := http.ListenAndServe(addr, mux); err != nil {
					log.Logger().Error("failed to serve metrics", zap.Error(err))
				}
			}()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err = run(ctx, conf, flags); err != nil {
			log.Logger().Fatal("failed to compute neighbors", zap.Error(err))
		}
	},
}

func run(ctx context.Context, conf *config.Config, flags *pflag.FlagSet) error {
	start := time.Now()
	d, err := loadDataset(ctx, conf, flags)
	if err != nil {
		return errors.Trace(err)
	}
	log.Logger().Info("load dataset",
		zap.Int("n_users", d.CountUsers()),
		zap.Int("n_items", d.CountItems()),
		zap.Int("n_feedback", d.CountFeedback()),
		zap.Duration("elapsed", time.Since(start)))

	log.Logger().Info("connect cache store", zap.String("cache_store", log.RedactDBURL(conf.Database.CacheStore)))
	cacheStore, err := cache.Open(conf.Database.CacheStore, conf.Database.TablePrefix)
	if err != nil {
		return errors.Trace(err)
	}
	defer cacheStore.Close()

	progress, _ := flags.GetBool("progress")
	cfg := logics.NeighborsConfig{
		Similarity:   conf.Neighbors.Similarity,
		CosineAlpha:  conf.Neighbors.CosineAlpha,
		NumNeighbors: conf.Neighbors.NumNeighbors,
		MinScore:     conf.Neighbors.MinScore,
		Jobs:         conf.Master.NumJobs,
		Progress:     progress,
	}
	if conf.Neighbors.Users {
		if err = logics.UpdateNeighbors(ctx, d.Users(), cache.UserNeighbors, cacheStore, cfg); err != nil {
			return errors.Trace(err)
		}
	}
	if conf.Neighbors.Items {
		if err = logics.UpdateNeighbors(ctx, d.Items(), cache.ItemNeighbors, cacheStore, cfg); err != nil {
			return errors.Trace(err)
		}
	}
	log.Logger().Info("complete computing neighbors", zap.Duration("elapsed", time.Since(start)))
	return nil
}

// loadDataset reads feedback from a CSV file if given, otherwise from the data store.
func loadDataset(ctx context.Context, conf *config.Config, flags *pflag.FlagSet) (*dataset.Dataset, error) {
	if csvPath, _ := flags.GetString("csv"); csvPath != "" {
		sep, _ := flags.GetString("csv-sep")
		if utf8.RuneCountInString(sep) != 1 {
			return nil, errors.NotValidf("csv separator %q", sep)
		}
		sepRune, _ := utf8.DecodeRuneInString(sep)
		header, _ := flags.GetBool("csv-header")
		file, err := os.Open(csvPath)
		if err != nil {
			return nil, errors.Trace(err)
		}
		defer file.Close()
		log.Logger().Info("load feedback from csv", zap.String("path", csvPath))
		return dataset.LoadCSV(file, sepRune, header)
	}
	if conf.Database.DataStore == "" {
		return nil, errors.NotValidf("empty data store without csv")
	}
	log.Logger().Info("connect data store", zap.String("data_store", log.RedactDBURL(conf.Database.DataStore)))
	dataStore, err := data.Open(conf.Database.DataStore, conf.Database.TablePrefix)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer dataStore.Close()
	if err = dataStore.Init(); err != nil {
		return nil, errors.Trace(err)
	}
	return data.LoadDataset(ctx, dataStore, conf.Neighbors.PositiveFeedbackTypes, conf.Neighbors.BatchSize)
}

func init() {
	log.AddFlags(neighborsCommand.PersistentFlags())
	neighborsCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	neighborsCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")
	neighborsCommand.PersistentFlags().BoolP("version", "v", false, "gorse version")
	neighborsCommand.PersistentFlags().IntP("jobs", "j", 1, "number of working jobs")
	neighborsCommand.PersistentFlags().String("csv", "", "read feedback from a CSV file instead of the data store")
	neighborsCommand.PersistentFlags().String("csv-sep", ",", "separator of the CSV file")
	neighborsCommand.PersistentFlags().Bool("csv-header", false, "skip the header of the CSV file")
	neighborsCommand.PersistentFlags().Bool("progress", false, "show progress bars")
	neighborsCommand.PersistentFlags().Int("metrics-port", 0, "port of the prometheus metrics endpoint, 0 to disable")
}

func main() {
	if err := neighborsCommand.Execute(); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}
