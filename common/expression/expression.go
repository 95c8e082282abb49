// Copyright 2025 gorse Project Authors
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

package expression

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/juju/errors"
	"github.com/samber/lo"
)

var expressionPattern = regexp.MustCompile(`^(?P<feedback_type>[a-zA-Z][a-zA-Z0-9_]*)(?P<expr_type><=|>=|<|>|=)?(?P<value>[0-9]*\.?[0-9]*)$`)

type ExprType int

const (
	None ExprType = iota
	Less
	LessOrEqual
	Greater
	GreaterOrEqual
	Equal
)

func (typ ExprType) String() string {
	switch typ {
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Greater:
		return ">"
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "="
	default:
		return ""
	}
}

// FeedbackTypeExpression selects feedback by type and, optionally, by a
// comparison on the feedback value, e.g. "star", "read>=3".
type FeedbackTypeExpression struct {
	FeedbackType string
	ExprType     ExprType
	Value        float64
}

func (f *FeedbackTypeExpression) String() string {
	if f.ExprType == None {
		return f.FeedbackType
	}
	return fmt.Sprintf("%s%v%v", f.FeedbackType, f.ExprType, f.Value)
}

func (f *FeedbackTypeExpression) FromString(data string) error {
	groupNames := expressionPattern.SubexpNames()
	subMatches := expressionPattern.FindStringSubmatch(data)
	if len(subMatches) == 0 {
		return errors.NotValidf("feedback type expression %q, expected format: <feedback_type>[<operator><value>]", data)
	}
	*f = FeedbackTypeExpression{}
	for i, match := range subMatches {
		switch groupNames[i] {
		case "feedback_type":
			f.FeedbackType = match
		case "expr_type":
			switch match {
			case "<":
				f.ExprType = Less
			case "<=":
				f.ExprType = LessOrEqual
			case ">":
				f.ExprType = Greater
			case ">=":
				f.ExprType = GreaterOrEqual
			case "=":
				f.ExprType = Equal
			default:
				f.ExprType = None
			}
		case "value":
			if len(match) > 0 {
				var err error
				f.Value, err = strconv.ParseFloat(match, 64)
				if err != nil {
					return errors.Annotatef(err, "invalid value in %q", data)
				}
			}
		}
	}
	if f.ExprType != None && subMatches[expressionPattern.SubexpIndex("value")] == "" {
		return errors.NotValidf("feedback type expression %q without value", data)
	}
	return nil
}

func (f FeedbackTypeExpression) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FeedbackTypeExpression) UnmarshalText(text []byte) error {
	return f.FromString(string(text))
}

func (f *FeedbackTypeExpression) Match(feedbackType string, value float64) bool {
	if f.FeedbackType != feedbackType {
		return false
	}
	switch f.ExprType {
	case None:
		return true
	case Less:
		return value < f.Value
	case LessOrEqual:
		return value <= f.Value
	case Greater:
		return value > f.Value
	case GreaterOrEqual:
		return value >= f.Value
	case Equal:
		return value == f.Value
	default:
		return false
	}
}

func MatchFeedbackTypeExpressions(exprs []FeedbackTypeExpression, feedbackType string, value float64) bool {
	for _, expr := range exprs {
		if expr.Match(feedbackType, value) {
			return true
		}
	}
	return false
}

// FeedbackTypes returns the distinct feedback types referenced by expressions.
func FeedbackTypes(exprs []FeedbackTypeExpression) []string {
	return lo.Uniq(lo.Map(exprs, func(expr FeedbackTypeExpression, _ int) string {
		return expr.FeedbackType
	}))
}

func MustParseFeedbackTypeExpression(s string) FeedbackTypeExpression {
	var expr FeedbackTypeExpression
	lo.Must0(expr.FromString(s))
	return expr
}
