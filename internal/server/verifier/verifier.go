// Package verifier implements the credential store: salted-hash
// registration, credential verification, and whole-store persistence as a
// single JSON file.
package verifier

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranbbs/jeran/internal/common"
	"github.com/jeranbbs/jeran/internal/cryptox"
	"github.com/jeranbbs/jeran/internal/filex"
	"github.com/jeranbbs/jeran/internal/logging"
)

// Identity is the portable (name, public identifier) pair proven by a
// successful credential check. It outlives any single connection.
type Identity struct {
	Name     string `json:"name"`
	PublicID string `json:"public_id"`
}

func (id Identity) String() string {
	return fmt.Sprintf("%s (%s)", id.Name, id.PublicID)
}

// Record is one stored credential. Records are created by Register and
// never mutated.
type Record struct {
	Hash     []byte `json:"hash"`
	Salt     []byte `json:"salt"`
	PublicID string `json:"public_id"`
	Name     string `json:"name"`
}

// Verifier owns the credential records. All access is serialized on one
// mutex; registration re-validates the public-identifier collision check
// under the same lock as the insert.
type Verifier struct {
	mu      sync.Mutex
	records []Record
	path    string
	logger  logging.Logger
}

func New(path string, logger logging.Logger) *Verifier {
	return &Verifier{
		path:   path,
		logger: logger.With("module", "verifier"),
	}
}

// Load reads the record store from disk. A missing or corrupt file is not
// fatal: the store starts empty and is immediately rewritten to repair the
// path.
func (v *Verifier) Load(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	data, err := os.ReadFile(v.path)
	if err == nil {
		err = json.Unmarshal(data, &v.records)
	}
	if err != nil {
		v.logger.Warn(ctx, "failed to load credential store, starting empty", "path", v.path, "error", err.Error())
		v.records = nil
		if err := v.save(); err != nil {
			return fmt.Errorf("repair credential store: %w", err)
		}
		return nil
	}

	v.logger.Info(ctx, "loaded credential store", "path", v.path, "records", len(v.records))
	return nil
}

// Register derives a fresh salted hash for the password, assigns a unique
// public identifier and persists the store.
func (v *Verifier) Register(ctx context.Context, name, password string) (Identity, error) {
	salt, err := cryptox.NewSalt()
	if err != nil {
		return Identity{}, err
	}
	hash := cryptox.HashPassword(password, salt)

	v.mu.Lock()
	defer v.mu.Unlock()

	publicID := uuid.NewString()
	for v.publicIDExists(publicID) {
		publicID = uuid.NewString()
	}

	v.records = append(v.records, Record{
		Hash:     hash,
		Salt:     salt,
		PublicID: publicID,
		Name:     name,
	})

	if err := v.save(); err != nil {
		// The record stays registered in memory; the next successful save
		// picks it up.
		v.logger.Error(ctx, "failed to persist credential store", "error", err.Error())
	}

	v.logger.Info(ctx, "registered credential", "name", name, "public_id", publicID)
	return Identity{Name: name, PublicID: publicID}, nil
}

// Verify re-derives the hash for each record matching name and compares it
// against the stored hash. First match wins. Failure does not distinguish
// an unknown name from a wrong password.
func (v *Verifier) Verify(ctx context.Context, name, password string) (Identity, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, rec := range v.records {
		if rec.Name != name {
			continue
		}
		candidate := cryptox.HashPassword(password, rec.Salt)
		if subtle.ConstantTimeCompare(rec.Hash, candidate) == 1 {
			return Identity{Name: rec.Name, PublicID: rec.PublicID}, nil
		}
	}

	return Identity{}, common.ErrInvalidCredentials
}

// Len reports the number of stored records.
func (v *Verifier) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.records)
}

func (v *Verifier) publicIDExists(publicID string) bool {
	for _, rec := range v.records {
		if rec.PublicID == publicID {
			return true
		}
	}
	return false
}

// save writes the whole store as one JSON blob. Caller holds the lock.
func (v *Verifier) save() error {
	if err := filex.EnsureDir(filepath.Dir(v.path)); err != nil {
		return err
	}
	records := v.records
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode credential store: %w", err)
	}
	if err := os.WriteFile(v.path, data, 0o660); err != nil {
		return fmt.Errorf("write credential store: %w", err)
	}
	return nil
}
