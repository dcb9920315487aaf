/*
SPDX-License-Identifier: GPL-3.0-or-later

Copyright (C) 2025 Aaron Mathis aaron.mathis@gmail.com

This file is part of GoSight.

GoSight is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GoSight is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GoSight. If not, see https://www.gnu.org/licenses/.
*/

package auth

import (
	"bufio"
	"crypto/subtle"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor used both when the operator runs
// `ducktracker --hash-password` to populate the passwd file and when
// Verify checks a stored "$2..." entry against a login attempt.
const bcryptCost = 14

// HashPassword bcrypt-hashes password for a ducktracker.passwd entry.
// Exposed for cmd/ducktracker's --hash-password flag, the only place a
// plaintext secret needs to become a storable one.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(hash), err
}

// checkPasswordHash reports whether pass matches the bcrypt hash.
func checkPasswordHash(pass, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil
}

// PasswdFile is an in-memory, parsed ducktracker.passwd file: one
// user:secret per line. A secret beginning with "$2" is a bcrypt hash;
// anything else is compared as plaintext. Reloaded only on restart, per
// spec §6.3 — there is deliberately no hot-reload path here even though
// internal/bootstrap wires an fsnotify watcher that logs when the file
// changes on disk.
type PasswdFile struct {
	entries map[string]string // user -> secret (hash or plaintext)
}

// LoadPasswdFile reads and parses path. Blank lines and lines starting
// with '#' are ignored. A malformed entry (no colon) is skipped with no
// error, matching Hauk's own tolerant parser.
func LoadPasswdFile(path string) (*PasswdFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("auth: open password file: %w", err)
	}
	defer f.Close()

	pf := &PasswdFile{entries: make(map[string]string)}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, secret, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		pf.entries[user] = secret
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("auth: read password file: %w", err)
	}
	return pf, nil
}

// Verify reports whether user/pass matches an entry in the file. It
// never distinguishes an unknown user from a wrong password, and never
// logs the password.
func (pf *PasswdFile) Verify(user, pass string) bool {
	secret, ok := pf.entries[user]
	if !ok {
		// Still run a comparison against a dummy value so a missing
		// user doesn't return measurably faster than a wrong password.
		checkPasswordHash(pass, dummyBcryptHash)
		return false
	}
	if strings.HasPrefix(secret, "$2") {
		return checkPasswordHash(pass, secret)
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(secret)) == 1
}

// dummyBcryptHash is a valid bcrypt hash of an unreachable password,
// used only to keep Verify's unknown-user branch doing comparable work
// to its known-user branch.
const dummyBcryptHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5L2xsbcfpYwL6KCHvCZGmn1rICGOK"
