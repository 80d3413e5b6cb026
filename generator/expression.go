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

package generator

import (
	"math"
	"reflect"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/common/log"
	"github.com/juju/errors"
	"go.uber.org/zap"
)

func compileExpression(source string, env map[string]any) (*vm.Program, error) {
	if source == "" {
		return nil, errors.NotValidf("empty expression")
	}
	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, errors.Annotatef(err, "compile expression %q", source)
	}
	switch program.Node().Type().Kind() {
	case reflect.Float64, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Interface:
	default:
		return nil, errs.TypeMismatchf("expression %q must return a number", source)
	}
	return program, nil
}

// runExpression evaluates a compiled expression. Failures evaluate to NaN.
func runExpression(source string, program *vm.Program, env map[string]any) float64 {
	result, err := expr.Run(program, env)
	if err != nil {
		log.Logger().Error("evaluate expression", zap.String("expression", source), zap.Error(err))
		return math.NaN()
	}
	switch typed := result.(type) {
	case float64:
		return typed
	case int:
		return float64(typed)
	case int8:
		return float64(typed)
	case int16:
		return float64(typed)
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	default:
		log.Logger().Error("expression returned a non-number", zap.String("expression", source), zap.Any("result", result))
		return math.NaN()
	}
}

// Expression compiles a unary operator from an expression over x, e.g.
// "x * x" or "abs(x) > 1 ? 1 : 0".
func Expression(source string) (UnaryOp, error) {
	program, err := compileExpression(source, map[string]any{"x": 0.0})
	if err != nil {
		return UnaryOp{}, errors.Trace(err)
	}
	return Pointwise("expr", func(x float64) float64 {
		return runExpression(source, program, map[string]any{"x": x})
	}), nil
}

// BinaryExpression compiles a binary operator from an expression over x and y.
func BinaryExpression(source string) (BinaryOp, error) {
	program, err := compileExpression(source, map[string]any{"x": 0.0, "y": 0.0})
	if err != nil {
		return BinaryOp{}, errors.Trace(err)
	}
	return BinaryOp{Name: "expr", Value: func(x, y float64) float64 {
		return runExpression(source, program, map[string]any{"x": x, "y": y})
	}}, nil
}
