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

// Dict maps label names to class indices.
type Dict struct {
	si map[string]int
}

func NewDict(labels ...string) *Dict {
	d := &Dict{si: make(map[string]int, len(labels))}
	for i, s := range labels {
		if _, exist := d.si[s]; !exist {
			d.si[s] = i
		}
	}
	return d
}

// Id returns the class of s. Duplicated labels resolve to their first class.
func (d *Dict) Id(s string) (int, bool) {
	y, ok := d.si[s]
	return y, ok
}
