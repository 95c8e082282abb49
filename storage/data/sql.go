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
	"time"

	"github.com/gorse-io/neighbors/storage"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SQLDriver int

const (
	MySQL SQLDriver = iota
	Postgres
	SQLite
)

// SQLDatabase use MySQL, PostgreSQL or SQLite as data storage.
type SQLDatabase struct {
	storage.TablePrefix
	gormDB *gorm.DB
	client *sql.DB
	driver SQLDriver
}

// Init tables and indices.
func (d *SQLDatabase) Init() error {
	switch d.driver {
	case MySQL, SQLite:
		type Feedback struct {
			FeedbackType string    `gorm:"column:feedback_type;type:varchar(256);not null;primaryKey"`
			UserId       string    `gorm:"column:user_id;type:varchar(256);not null;primaryKey;index:user_id"`
			ItemId       string    `gorm:"column:item_id;type:varchar(256);not null;primaryKey;index:item_id"`
			Value        float64   `gorm:"column:value;type:double;not null;default:0"`
			Timestamp    time.Time `gorm:"column:time_stamp;type:datetime;not null"`
		}
		if err := d.gormDB.Table(d.FeedbackTable()).AutoMigrate(Feedback{}); err != nil {
			return errors.Trace(err)
		}
	case Postgres:
		type Feedback struct {
			FeedbackType string    `gorm:"column:feedback_type;type:varchar(256);not null;primaryKey"`
			UserId       string    `gorm:"column:user_id;type:varchar(256);not null;primaryKey;index:user_id_index"`
			ItemId       string    `gorm:"column:item_id;type:varchar(256);not null;primaryKey;index:item_id_index"`
			Value        float64   `gorm:"column:value;type:double precision;not null;default:0"`
			Timestamp    time.Time `gorm:"column:time_stamp;type:timestamptz;not null"`
		}
		if err := d.gormDB.Table(d.FeedbackTable()).AutoMigrate(Feedback{}); err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// Close the connection.
func (d *SQLDatabase) Close() error {
	return d.client.Close()
}

// Purge deletes all feedback.
func (d *SQLDatabase) Purge() error {
	if d.gormDB.Migrator().HasTable(d.FeedbackTable()) {
		if err := d.gormDB.Exec("DELETE FROM " + d.FeedbackTable()).Error; err != nil {
			return errors.Trace(err)
		}
	}
	return nil
}

// BatchInsertFeedback inserts a batch of feedback. The first feedback wins if
// the batch contains the same key twice.
func (d *SQLDatabase) BatchInsertFeedback(ctx context.Context, feedback []Feedback) error {
	feedback = lo.UniqBy(feedback, func(f Feedback) lo.Tuple3[string, string, string] {
		return lo.T3(f.FeedbackType, f.UserId, f.ItemId)
	})
	if len(feedback) == 0 {
		return nil
	}
	err := d.gormDB.WithContext(ctx).Table(d.FeedbackTable()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "feedback_type"}, {Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "time_stamp"}),
	}).Create(feedback).Error
	return errors.Trace(err)
}

// GetFeedback reads feedback by stream.
func (d *SQLDatabase) GetFeedback(ctx context.Context, batchSize int, feedbackTypes ...string) (chan []Feedback, chan error) {
	feedbackChan := make(chan []Feedback, bufSize)
	errChan := make(chan error, 1)
	go func() {
		defer close(feedbackChan)
		defer close(errChan)
		// send query
		tx := d.gormDB.WithContext(ctx).Table(d.FeedbackTable()).
			Select("feedback_type, user_id, item_id, value, time_stamp")
		if len(feedbackTypes) > 0 {
			tx = tx.Where("feedback_type IN ?", feedbackTypes)
		}
		result, err := tx.Rows()
		if err != nil {
			errChan <- errors.Trace(err)
			return
		}
		defer result.Close()
		// fetch result
		feedbacks := make([]Feedback, 0, batchSize)
		for result.Next() {
			var feedback Feedback
			if err = d.gormDB.ScanRows(result, &feedback); err != nil {
				errChan <- errors.Trace(err)
				return
			}
			feedbacks = append(feedbacks, feedback)
			if len(feedbacks) == batchSize {
				select {
				case feedbackChan <- feedbacks:
				case <-ctx.Done():
					errChan <- errors.Trace(ctx.Err())
					return
				}
				feedbacks = make([]Feedback, 0, batchSize)
			}
		}
		if err = result.Err(); err != nil {
			errChan <- errors.Trace(err)
			return
		}
		if len(feedbacks) > 0 {
			select {
			case feedbackChan <- feedbacks:
			case <-ctx.Done():
				errChan <- errors.Trace(ctx.Err())
				return
			}
		}
		errChan <- nil
	}()
	return feedbackChan, errChan
}
