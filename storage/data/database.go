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

package data

import (
	"context"
	"database/sql"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/gorse-io/neighbors/common/expression"
	"github.com/gorse-io/neighbors/dataset"
	"github.com/gorse-io/neighbors/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

const bufSize = 1

// Feedback stores feedback.
type Feedback struct {
	FeedbackType string    `gorm:"column:feedback_type"`
	UserId       string    `gorm:"column:user_id"`
	ItemId       string    `gorm:"column:item_id"`
	Value        float64   `gorm:"column:value"`
	Timestamp    time.Time `gorm:"column:time_stamp"`
}

type Database interface {
	Init() error
	Close() error
	Purge() error
	// BatchInsertFeedback inserts feedback and overwrites feedback with the same
	// (feedback_type, user_id, item_id).
	BatchInsertFeedback(ctx context.Context, feedback []Feedback) error
	// GetFeedback streams feedback of given types in batches. All types are
	// returned if no type is given.
	GetFeedback(ctx context.Context, batchSize int, feedbackTypes ...string) (chan []Feedback, chan error)
}

// Open a connection to a database.
func Open(path, tablePrefix string) (Database, error) {
	var err error
	if strings.HasPrefix(path, storage.MySQLPrefix) {
		name := path[len(storage.MySQLPrefix):]
		cfg, err := mysqlDriver.ParseDSN(name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		cfg.ParseTime = true
		database := new(SQLDatabase)
		database.driver = MySQL
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = sql.Open("mysql", cfg.FormatDSN()); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: database.client}), storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.PostgresPrefix) || strings.HasPrefix(path, storage.PostgreSQLPrefix) {
		database := new(SQLDatabase)
		database.driver = Postgres
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.gormDB, err = gorm.Open(postgres.Open(path), storage.NewGORMConfig(tablePrefix)); err != nil {
			return nil, errors.Trace(err)
		}
		if database.client, err = database.gormDB.DB(); err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	} else if strings.HasPrefix(path, storage.SQLitePrefix) {
		// append parameters
		if path, err = storage.AppendURLParams(path, []lo.Tuple2[string, string]{
			{"_pragma", "busy_timeout(10000)"},
			{"_pragma", "journal_mode(wal)"},
		}); err != nil {
			return nil, errors.Trace(err)
		}
		// connect to database
		name := path[len(storage.SQLitePrefix):]
		database := new(SQLDatabase)
		database.driver = SQLite
		database.TablePrefix = storage.TablePrefix(tablePrefix)
		if database.client, err = sql.Open("sqlite", name); err != nil {
			return nil, errors.Trace(err)
		}
		database.gormDB, err = gorm.Open(sqlite.Dialector{Conn: database.client}, storage.NewGORMConfig(tablePrefix))
		if err != nil {
			return nil, errors.Trace(err)
		}
		return database, nil
	}
	return nil, errors.NotSupportedf("data store %s", path)
}

// LoadDataset reads positive feedback from the database into a dataset. Every
// feedback counts once no matter its value. All feedback is positive if no
// expression is given.
func LoadDataset(ctx context.Context, database Database, positiveFeedbackTypes []expression.FeedbackTypeExpression, batchSize int) (*dataset.Dataset, error) {
	builder := dataset.NewBuilder()
	feedbackChan, errChan := database.GetFeedback(ctx, batchSize, expression.FeedbackTypes(positiveFeedbackTypes)...)
	for batch := range feedbackChan {
		for _, feedback := range batch {
			if len(positiveFeedbackTypes) > 0 &&
				!expression.MatchFeedbackTypeExpressions(positiveFeedbackTypes, feedback.FeedbackType, feedback.Value) {
				continue
			}
			builder.AddFeedback(feedback.UserId, feedback.ItemId, 1)
		}
	}
	if err := <-errChan; err != nil {
		return nil, errors.Trace(err)
	}
	return builder.Build(), nil
}
