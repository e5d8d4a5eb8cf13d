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

package proc

import "os/user"

// ResolveUser returns the canonical username for a username or numeric id.
// Long usernames are reported by some systems as numeric ids, so numeric
// values are resolved through the user database. If resolution fails, the
// raw value is returned unchanged.
func ResolveUser(idOrName string) string {
	if idOrName == "" {
		return idOrName
	}

	if idOrName[0] >= '0' && idOrName[0] <= '9' {
		if userInfo, err := user.LookupId(idOrName); err == nil {
			return userInfo.Username
		}

		return idOrName
	}

	if userInfo, err := user.Lookup(idOrName); err == nil {
		return userInfo.Username
	}

	return idOrName
}
