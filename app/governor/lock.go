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

package governor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// ErrAlreadyRunning is returned when another instance holds the pid file.
var ErrAlreadyRunning = errors.New("another instance is already running")

// PIDLock is an exclusive file lock keeping a second daemon instance from
// governing the same host.
type PIDLock struct {
	path string
	lock *flock.Flock
}

// AcquirePIDLock takes the lock on the pid file and records our pid in it.
// It returns ErrAlreadyRunning if the lock is held elsewhere.
func AcquirePIDLock(path string) (*PIDLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create pid file directory")
	}

	lock := flock.New(path)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, errors.Wrap(err, "failed to lock pid file")
	}

	if !locked {
		return nil, ErrAlreadyRunning
	}

	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644); err != nil {
		_ = lock.Unlock()
		return nil, errors.Wrap(err, "failed to write pid file")
	}

	return &PIDLock{path: path, lock: lock}, nil
}

// Release drops the lock and removes the pid file.
func (l *PIDLock) Release() {
	_ = l.lock.Unlock()
	_ = os.Remove(l.path)
}
