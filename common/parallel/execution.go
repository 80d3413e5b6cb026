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

package parallel

import (
	"runtime"
	"strings"

	"github.com/juju/errors"
)

// Execution selects between running on the calling goroutine and fanning out
// over the worker pool.
type Execution int

const (
	Seq Execution = iota
	Par
)

func (e Execution) String() string {
	switch e {
	case Seq:
		return "seq"
	case Par:
		return "par"
	default:
		return "unknown"
	}
}

// Workers returns the pool size used under e.
func (e Execution) Workers(jobs int) int {
	if e == Seq {
		return 1
	}
	if jobs <= 0 {
		return runtime.NumCPU()
	}
	return jobs
}

func ParseExecution(s string) (Execution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "seq", "sequential":
		return Seq, nil
	case "par", "parallel":
		return Par, nil
	default:
		return Seq, errors.NotValidf("execution %q", s)
	}
}
