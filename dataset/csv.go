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

package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/juju/errors"
)

// ReadCSV reads feedback from records of `user<sep>item[<sep>weight]`. A
// missing weight counts as 1. The first record is skipped if header is set.
func (b *Builder) ReadCSV(r io.Reader, sep rune, header bool) error {
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true
	for lineNumber := 1; ; lineNumber++ {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return errors.Trace(err)
		}
		if header && lineNumber == 1 {
			continue
		}
		if len(record) < 2 {
			return errors.NotValidf("line %d: expected at least 2 fields but got %d", lineNumber, len(record))
		}
		userId, itemId := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if userId == "" || itemId == "" {
			return errors.NotValidf("line %d: empty user or item id", lineNumber)
		}
		weight := 1.0
		if len(record) > 2 && strings.TrimSpace(record[2]) != "" {
			weight, err = strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
			if err != nil {
				return errors.Annotatef(err, "line %d", lineNumber)
			}
		}
		b.AddFeedback(userId, itemId, weight)
	}
}

// LoadCSV builds a dataset from CSV feedback.
func LoadCSV(r io.Reader, sep rune, header bool) (*Dataset, error) {
	builder := NewBuilder()
	if err := builder.ReadCSV(r, sep, header); err != nil {
		return nil, errors.Trace(err)
	}
	return builder.Build(), nil
}
