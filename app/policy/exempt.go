// Copyright 2026 resgov.io
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// Superuser is always exempt, regardless of the configured policy.
const Superuser = "root"

// ExemptionFilter excludes processes from governing. Patterns are compiled
// once per policy load, not per process.
type ExemptionFilter struct {
	users    map[string]struct{}
	patterns []*regexp.Regexp
}

// NewExemptionFilter compiles an exemption policy. Each process pattern is
// matched case-sensitively on word boundaries.
func NewExemptionFilter(users []string, processPatterns []string) (*ExemptionFilter, error) {
	filter := &ExemptionFilter{
		users:    make(map[string]struct{}, len(users)),
		patterns: make([]*regexp.Regexp, 0, len(processPatterns)),
	}

	for _, user := range users {
		filter.users[user] = struct{}{}
	}

	for _, pattern := range processPatterns {
		compiled, err := regexp.Compile(`\b(?:` + pattern + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("invalid exempt process pattern %q: %w", pattern, err)
		}

		filter.patterns = append(filter.patterns, compiled)
	}

	return filter, nil
}

// IsExempt reports whether a process owned by owner and started with the
// given command line is excluded from governing.
func (f *ExemptionFilter) IsExempt(owner, command string) bool {
	if owner == Superuser {
		return true
	}

	if _, ok := f.users[owner]; ok {
		return true
	}

	if len(f.patterns) == 0 {
		return false
	}

	for _, word := range strings.Fields(command) {
		for _, pattern := range f.patterns {
			if pattern.MatchString(word) {
				return true
			}
		}
	}

	return false
}
