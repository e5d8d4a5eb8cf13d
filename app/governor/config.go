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
	"encoding/json"
	"fmt"
	"os"
	"path"

	"go.resgov.io/agent/app/policy"
)

const (
	DefaultConfigDir = "/etc/resgovd"
	ConfigFileName   = "resgovd.json"
)

const defaultIntervalSeconds = 60

// Config is the governing policy and runtime configuration of the daemon.
type Config struct {
	// Directory where the configuration file is located.
	Directory string `json:"-"`

	// LoadAverageTrigger gates each cycle: process evaluation only runs
	// when the 1-minute load average is at or above this value...
	LoadAverageTrigger float64 `json:"load_average_trigger"`

	// FreeMemoryTriggerMB ...or available memory is at or below this value.
	FreeMemoryTriggerMB int `json:"free_memory_trigger_mb"`

	// Thresholds are the escalation tiers.
	Thresholds policy.Thresholds `json:"thresholds"`

	// IntervalSeconds between governing cycles.
	IntervalSeconds int `json:"interval_seconds,omitempty"`

	// Loop keeps the daemon running; when false a single cycle is executed.
	// A reload that clears it stops the daemon at the next cycle boundary.
	Loop bool `json:"loop"`

	// Pretend computes and logs decisions without acting on them.
	Pretend bool `json:"pretend,omitempty"`

	// Debug enables debug logging.
	Debug bool `json:"debug,omitempty"`

	// Daemonize is recorded for init scripts; process supervision itself
	// is left to the service manager.
	Daemonize bool `json:"daemonize,omitempty"`

	// LogFile receives all log records when set.
	LogFile string `json:"log_file,omitempty"`

	// PIDFile guards against a second running instance.
	PIDFile string `json:"pid_file,omitempty"`

	// MailFrom is the optional sender address for notifications.
	MailFrom string `json:"mail_from,omitempty"`

	// MailBcc is the optional operator copy for notifications.
	MailBcc string `json:"mail_bcc,omitempty"`

	// MailLookupCommand resolves a username to an email address.
	MailLookupCommand string `json:"mail_lookup_command,omitempty"`

	// ExemptUsers are never governed.
	ExemptUsers []string `json:"exempt_users,omitempty"`

	// ExemptProcesses are command patterns that are never governed.
	ExemptProcesses []string `json:"exempt_processes,omitempty"`
}

// LoadConfig loads the config file from the provided directory.
func LoadConfig(configDir string) (*Config, error) {
	configFilePath := path.Join(configDir, ConfigFileName)

	configBytes, err := os.ReadFile(configFilePath)
	if err != nil {
		return nil, fmt.Errorf("error loading config from file %s: %w", configFilePath, err)
	}

	// defaults applied for keys absent from the file
	config := &Config{
		Loop:            true,
		IntervalSeconds: defaultIntervalSeconds,
		PIDFile:         "/var/run/resgovd.pid",
	}

	if err = json.Unmarshal(configBytes, config); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %w", configFilePath, err)
	}

	config.Directory = configDir

	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configFilePath, err)
	}

	return config, nil
}

// Validate returns an error for configuration the daemon cannot start with.
func (config *Config) Validate() error {
	if config.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive, got %d", config.IntervalSeconds)
	}

	if config.LoadAverageTrigger < 0 {
		return fmt.Errorf("load_average_trigger must be non-negative, got %f", config.LoadAverageTrigger)
	}

	if config.FreeMemoryTriggerMB < 0 {
		return fmt.Errorf("free_memory_trigger_mb must be non-negative, got %d", config.FreeMemoryTriggerMB)
	}

	return config.Thresholds.Validate()
}
