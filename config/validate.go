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
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gorse-io/neighbors/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	dataStorePrefixes = []string{
		storage.MySQLPrefix,
		storage.PostgresPrefix,
		storage.PostgreSQLPrefix,
		storage.SQLitePrefix,
	}
	cacheStorePrefixes = []string{
		storage.RedisPrefix,
		storage.RedissPrefix,
	}
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		lo.Must0(validate.RegisterValidation("data_store", hasPrefix(dataStorePrefixes)))
		lo.Must0(validate.RegisterValidation("cache_store", hasPrefix(cacheStorePrefixes)))
	})
	return validate
}

func hasPrefix(prefixes []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return lo.ContainsBy(prefixes, func(prefix string) bool {
			return strings.HasPrefix(fl.Field().String(), prefix)
		})
	}
}

// Validate checks every field of the configuration.
func (config *Config) Validate() error {
	if err := getValidator().Struct(config); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			messages := lo.Map(validationErrors, func(e validator.FieldError, _ int) string {
				return e.Namespace() + " failed on " + e.Tag()
			})
			return errors.NotValidf("config (%s)", strings.Join(messages, "; "))
		}
		return errors.Trace(err)
	}
	return nil
}
