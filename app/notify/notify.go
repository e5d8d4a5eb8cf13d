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

// Package notify emails process owners and operators about actions taken.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"go.resgov.io/agent/app/escalate"
	"go.resgov.io/agent/app/log"
	"go.resgov.io/agent/app/policy"
	"go.resgov.io/agent/app/proc"
	"go.resgov.io/agent/app/utils"
)

const sendmailBinPath = "/usr/sbin/sendmail"

// Transport delivers a rendered RFC-822-style message. It returns whatever
// the underlying mailer printed; mailers often exit zero on delivery
// failure, so any output is treated as a possible failure by the caller.
type Transport interface {
	Send(ctx context.Context, message []byte) ([]byte, error)
}

// sendmailTransport pipes the message to the local sendmail binary.
type sendmailTransport struct{}

func (sendmailTransport) Send(ctx context.Context, message []byte) ([]byte, error) {
	return utils.RunCommandWithInput(ctx, []string{sendmailBinPath, "-oi", "-t"}, message)
}

// Dispatcher sends one email per executed action to the process owner,
// optionally copying operators. Dispatch is best-effort: every failure is
// logged and absorbed.
type Dispatcher struct {
	// From is the optional sender address.
	From string

	// Bcc is the optional operator address copied on every notification.
	Bcc string

	// LookupCommand is an optional external command resolving a username
	// to an email address. On any failure the raw username is used.
	LookupCommand string

	// Pretend skips delivery entirely; only the log record is produced.
	Pretend bool

	transport Transport
}

// NewDispatcher returns a Dispatcher delivering through local sendmail.
func NewDispatcher(from, bcc, lookupCommand string, pretend bool) *Dispatcher {
	return &Dispatcher{
		From:          from,
		Bcc:           bcc,
		LookupCommand: lookupCommand,
		Pretend:       pretend,
		transport:     sendmailTransport{},
	}
}

// Notify emails the owner of the sampled process about the action taken.
// It never returns an error to the caller.
func (d *Dispatcher) Notify(ctx context.Context, decision policy.Decision, outcome escalate.Outcome, sample proc.Sample) {
	if d.Pretend {
		log.Infof("pretend: would notify %s about %s of pid %d", sample.Owner, decision.Action, sample.PID)
		return
	}

	recipient := d.resolveAddress(ctx, sample.Owner)

	message := d.render(recipient, decision, sample)

	output, err := d.transport.Send(ctx, message)
	if err != nil {
		log.Warnf("failed to notify %s about %s of pid %d: %v", recipient, decision.Action, sample.PID, err)
		return
	}

	// the mailer's exit status is not a reliable failure signal
	if len(bytes.TrimSpace(output)) > 0 {
		log.Warnf("mailer output while notifying %s (delivery may have failed): %s", recipient, output)
		return
	}

	log.Debugf("notified %s about %s of pid %d", recipient, decision.Action, sample.PID)
}

// resolveAddress maps a username to an email address through the external
// lookup command, falling back to the raw username.
func (d *Dispatcher) resolveAddress(ctx context.Context, username string) string {
	if d.LookupCommand == "" {
		return username
	}

	output, err := utils.RunCommand(ctx, []string{d.LookupCommand, username})
	if err != nil {
		log.Warnf("address lookup for %s failed, using username: %v", username, err)
		return username
	}

	address := strings.TrimSpace(string(output))
	if address == "" {
		log.Warnf("address lookup for %s returned nothing, using username", username)
		return username
	}

	return address
}

// render builds the full message with headers for sendmail -t.
func (d *Dispatcher) render(recipient string, decision policy.Decision, sample proc.Sample) []byte {
	buf := new(bytes.Buffer)

	fmt.Fprintf(buf, "To: %s\n", recipient)

	if d.From != "" {
		fmt.Fprintf(buf, "From: %s\n", d.From)
	}

	if d.Bcc != "" {
		fmt.Fprintf(buf, "Bcc: %s\n", d.Bcc)
	}

	fmt.Fprintf(buf, "Subject: %s\n\n", Subject(decision.Action, sample))

	buf.WriteString(Body(decision.Action, sample))

	return buf.Bytes()
}
