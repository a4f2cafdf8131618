/*
Copyright The Gamebird Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package storage

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/suntank/gamebird-os/internal/fileutil"
)

// Parental controls persist only a hashed PIN; whether the current session
// is unlocked is the UI's business.

// ParentalPINSet reports whether a parental-control PIN has been set.
func (s *Store) ParentalPINSet() bool {
	_, err := os.Stat(s.pinPath())
	return err == nil
}

// SetParentalPIN stores the SHA-256 of a 4-digit PIN.
func (s *Store) SetParentalPIN(pin string) error {
	if len(pin) != 4 || strings.TrimFunc(pin, isDigit) != "" {
		return errors.New("PIN must be exactly 4 digits")
	}
	sum := sha256.Sum256([]byte(pin))
	return fileutil.AtomicWriteFile(s.pinPath(), bytes.NewReader([]byte(hex.EncodeToString(sum[:]))), 0600)
}

// VerifyParentalPIN checks pin against the stored hash. False when no PIN
// is set.
func (s *Store) VerifyParentalPIN(pin string) (bool, error) {
	stored, err := os.ReadFile(s.pinPath())
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:]) == strings.TrimSpace(string(stored)), nil
}

// RemoveParentalPIN disables parental controls. The correct PIN is
// required.
func (s *Store) RemoveParentalPIN(pin string) (bool, error) {
	ok, err := s.VerifyParentalPIN(pin)
	if err != nil || !ok {
		return false, err
	}
	if err := os.Remove(s.pinPath()); err != nil {
		return false, err
	}
	return true, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
