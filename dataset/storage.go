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

package dataset

import (
	"fmt"
	"math"

	"github.com/gorse-io/tabular/common/errs"
	"github.com/gorse-io/tabular/common/util"
	"github.com/juju/errors"
)

// StorageKind is the representation held by a column buffer.
type StorageKind int

const (
	StorageInt8 StorageKind = iota
	StorageInt16
	StorageInt32
	StorageInt64
	StorageUint8
	StorageUint16
	StorageUint32
	StorageUint64
	StorageFloat32
	StorageFloat64
	StorageLabel8  // single label indices, up to 256 classes
	StorageLabel16 // single label indices, up to 65536 classes
	StorageHits    // multi label hit matrix
)

var storageKindNames = [...]string{
	"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64", "label8", "label16", "hits",
}

func (k StorageKind) String() string {
	if k < StorageInt8 || k > StorageHits {
		return fmt.Sprintf("StorageKind(%d)", int(k))
	}
	return storageKindNames[k]
}

// storageKindOf picks the narrowest representation for f.
func storageKindOf(f Feature) (StorageKind, error) {
	switch f.Type {
	case SingleLabel:
		switch {
		case f.Classes() <= math.MaxUint8+1:
			return StorageLabel8, nil
		case f.Classes() <= math.MaxUint16+1:
			return StorageLabel16, nil
		default:
			return 0, errs.Unsupportedf("%d classes in feature %q", f.Classes(), f.Name)
		}
	case MultiLabel:
		return StorageHits, nil
	case Continuous:
		// numeric kinds and scalar storage kinds share the same order
		return StorageKind(f.Kind), nil
	default:
		return 0, errs.Unsupportedf("feature %q of type %v", f.Name, f.Type)
	}
}

// storage is a flat buffer of one numeric type. Every column operation is
// written once against this interface and buffer implements it generically,
// so the only switch over concrete types lives in newStorage.
type storage interface {
	Kind() StorageKind
	Len() int
	Float(i int) float64
	Int(i int) int
	SetFloat(i int, v float64) error
	SetInt(i int, v int64) error
	SetUint(i int, v uint64) error
	Parse(i int, s string) error
	Grow(n int) storage
}

func newStorage(kind StorageKind, n int) (storage, error) {
	switch kind {
	case StorageInt8:
		return newBuffer[int8](kind, n), nil
	case StorageInt16:
		return newBuffer[int16](kind, n), nil
	case StorageInt32:
		return newBuffer[int32](kind, n), nil
	case StorageInt64:
		return newBuffer[int64](kind, n), nil
	case StorageUint8, StorageLabel8, StorageHits:
		return newBuffer[uint8](kind, n), nil
	case StorageUint16, StorageLabel16:
		return newBuffer[uint16](kind, n), nil
	case StorageUint32:
		return newBuffer[uint32](kind, n), nil
	case StorageUint64:
		return newBuffer[uint64](kind, n), nil
	case StorageFloat32:
		return newBuffer[float32](kind, n), nil
	case StorageFloat64:
		return newBuffer[float64](kind, n), nil
	default:
		return nil, errs.Unsupportedf("storage kind %v", kind)
	}
}

type buffer[T util.Number] struct {
	kind     StorageKind
	integral bool
	data     []T
}

func newBuffer[T util.Number](kind StorageKind, n int) *buffer[T] {
	var zero T
	_, isFloat32 := any(zero).(float32)
	_, isFloat64 := any(zero).(float64)
	return &buffer[T]{kind: kind, integral: !isFloat32 && !isFloat64, data: make([]T, n)}
}

func (b *buffer[T]) Kind() StorageKind {
	return b.kind
}

func (b *buffer[T]) Len() int {
	return len(b.data)
}

func (b *buffer[T]) Float(i int) float64 {
	return float64(b.data[i])
}

func (b *buffer[T]) Int(i int) int {
	return int(b.data[i])
}

func (b *buffer[T]) SetFloat(i int, v float64) error {
	t := T(v)
	if b.integral && float64(t) != v {
		return errs.OutOfRangef("%v does not fit %v", v, b.kind)
	}
	b.data[i] = t
	return nil
}

func (b *buffer[T]) SetInt(i int, v int64) error {
	t := T(v)
	if b.integral && (int64(t) != v || (t < 0) != (v < 0)) {
		return errs.OutOfRangef("%v does not fit %v", v, b.kind)
	}
	b.data[i] = t
	return nil
}

func (b *buffer[T]) SetUint(i int, v uint64) error {
	t := T(v)
	if b.integral && (uint64(t) != v || t < 0) {
		return errs.OutOfRangef("%v does not fit %v", v, b.kind)
	}
	b.data[i] = t
	return nil
}

func (b *buffer[T]) Parse(i int, s string) error {
	v, err := util.ParseNumber[T](s)
	if err != nil {
		return errors.Annotatef(errs.TypeMismatch, "parse %q as %v: %v", s, b.kind, err)
	}
	b.data[i] = v
	return nil
}

func (b *buffer[T]) Grow(n int) storage {
	if n <= len(b.data) {
		return b
	}
	data := make([]T, n)
	copy(data, b.data)
	return &buffer[T]{kind: b.kind, integral: b.integral, data: data}
}
