// Package device persists per-account session artifacts across
// restarts: the device fingerprint presented during login negotiation
// and the fast-login session token. The storage directory is owned by
// the application; layout inside it is this package's concern.
package device

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Fingerprint identifies this installation to the gateway. Generated
// once per account and reused for every subsequent login; a changed
// fingerprint triggers a device-verification challenge server-side.
type Fingerprint struct {
	DeviceID string `json:"device_id"`
	Serial   string `json:"serial"`
	Created  int64  `json:"created,omitempty"`
}

// Store manages the artifact directory for one account.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) the artifact directory for
// accountID under baseDir.
func NewStore(baseDir string, accountID int64) (*Store, error) {
	dir := filepath.Join(baseDir, fmt.Sprintf("%d", accountID))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("device: create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the account's artifact directory.
func (s *Store) Dir() string { return s.dir }

// Fingerprint loads the persisted fingerprint, generating and
// persisting a fresh one on first use.
func (s *Store) Fingerprint() (*Fingerprint, error) {
	path := filepath.Join(s.dir, "device.json")

	data, err := os.ReadFile(path)
	if err == nil {
		var fp Fingerprint
		if err := json.Unmarshal(data, &fp); err == nil && fp.DeviceID != "" {
			return &fp, nil
		}
		// Corrupt file: regenerate below rather than failing login.
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("device: read fingerprint: %w", err)
	}

	fp := generate()
	if err := s.writeJSON(path, fp); err != nil {
		return nil, err
	}
	return fp, nil
}

// SaveToken persists the fast-login session token.
func (s *Store) SaveToken(token []byte) error {
	path := filepath.Join(s.dir, "token.bin")
	if err := os.WriteFile(path, token, 0o600); err != nil {
		return fmt.Errorf("device: write token: %w", err)
	}
	return nil
}

// Token loads the persisted session token; nil without error when no
// token has been saved yet.
func (s *Store) Token() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, "token.bin"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("device: read token: %w", err)
	}
	return data, nil
}

// ClearToken removes the persisted session token.
func (s *Store) ClearToken() error {
	err := os.Remove(filepath.Join(s.dir, "token.bin"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("device: clear token: %w", err)
	}
	return nil
}

func (s *Store) writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("device: marshal: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("device: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("device: rename: %w", err)
	}
	return nil
}

func generate() *Fingerprint {
	return &Fingerprint{
		DeviceID: uuid.NewString(),
		Serial:   "MIRAGE-" + randomHex(8),
		Created:  time.Now().Unix(),
	}
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// Entropy failure is not survivable; a weak fingerprint would
		// poison the account's device history.
		panic(fmt.Sprintf("device: crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}
