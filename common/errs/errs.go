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

// Package errs defines the error kinds raised by datasets and generators.
// Errors carry one of the kinds below and can be tested with errors.Is
// after any number of errors.Trace calls.
package errs

import "github.com/juju/errors"

const (
	// OutOfRange is raised for invalid sample, feature or label indices.
	OutOfRange = errors.ConstError("out of range")
	// TypeMismatch is raised when an accessor does not match the semantic
	// type of a feature or a buffer has the wrong shape.
	TypeMismatch = errors.ConstError("type mismatch")
	// NotReady is raised when a dataset or generator is read before it
	// has been resized or fitted.
	NotReady = errors.ConstError("not ready")
	// Unsupported is raised when a storage or feature combination is not
	// handled.
	Unsupported = errors.ConstError("unsupported")
)

func OutOfRangef(format string, args ...any) error {
	return errors.Annotatef(OutOfRange, format, args...)
}

func TypeMismatchf(format string, args ...any) error {
	return errors.Annotatef(TypeMismatch, format, args...)
}

func NotReadyf(format string, args ...any) error {
	return errors.Annotatef(NotReady, format, args...)
}

func Unsupportedf(format string, args ...any) error {
	return errors.Annotatef(Unsupported, format, args...)
}

// CheckIndex returns OutOfRange unless 0 <= i < n.
func CheckIndex(name string, i, n int) error {
	if i < 0 || i >= n {
		return errors.Annotatef(OutOfRange, "%s %d not in [0, %d)", name, i, n)
	}
	return nil
}
