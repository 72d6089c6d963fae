package account

import (
	"context"
	"fmt"

	"github.com/lumeno/accounts/internal/store"
)

// Account is the profile record stored under user:<email>. The password
// digest lives in the same hash but is stripped before the record leaves
// the repository through Get or List.
type Account struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Hash field names within an account record.
const (
	fieldEmail     = "email"
	fieldFirstName = "first_name"
	fieldLastName  = "last_name"
	fieldPassword  = "password"
)

// KeyDeletion reports the outcome of deleting one namespaced key. Deletion
// removes each of an account's four keys individually, so a partial failure
// leaves a readable trail instead of a half-explained error.
type KeyDeletion struct {
	Key           string `json:"key"`
	ExistedBefore bool   `json:"existed_before"`
	Deleted       int64  `json:"deleted"`
}

// Repository reads and writes account records. All methods normalize the
// email before deriving keys.
type Repository struct {
	store store.Hash
}

func NewRepository(s store.Hash) *Repository {
	return &Repository{store: s}
}

// Exists reports whether an account record is present for email.
func (r *Repository) Exists(ctx context.Context, email string) (bool, error) {
	return r.store.Exists(ctx, store.AccountKey(email))
}

// Create writes a fresh account record. The caller checks for duplicates
// first; between that check and this write nothing holds a lock, which is
// accepted for this design.
func (r *Repository) Create(ctx context.Context, email, firstName, lastName, passwordHash string) error {
	return r.store.SetFields(ctx, store.AccountKey(email), map[string]string{
		fieldEmail:     store.Normalize(email),
		fieldFirstName: firstName,
		fieldLastName:  lastName,
		fieldPassword:  passwordHash,
	})
}

// Get returns the account without its password digest, or nil if absent.
func (r *Repository) Get(ctx context.Context, email string) (*Account, error) {
	acc, _, err := r.GetWithHash(ctx, email)
	return acc, err
}

// GetWithHash returns the account and its stored password digest for
// credential checks. Returns nil, "", nil when no record exists.
func (r *Repository) GetWithHash(ctx context.Context, email string) (*Account, string, error) {
	fields, err := r.store.GetAll(ctx, store.AccountKey(email))
	if err != nil {
		return nil, "", err
	}
	if len(fields) == 0 {
		return nil, "", nil
	}
	return &Account{
		Email:     fields[fieldEmail],
		FirstName: fields[fieldFirstName],
		LastName:  fields[fieldLastName],
	}, fields[fieldPassword], nil
}

// PasswordHash returns the stored digest for credential checks, with
// found=false when no record exists.
func (r *Repository) PasswordHash(ctx context.Context, email string) (string, bool, error) {
	acc, hash, err := r.GetWithHash(ctx, email)
	if err != nil || acc == nil {
		return "", false, err
	}
	return hash, true, nil
}

// UpdateNames merges new first/last names into an existing record.
func (r *Repository) UpdateNames(ctx context.Context, email, firstName, lastName string) error {
	return r.store.SetFields(ctx, store.AccountKey(email), map[string]string{
		fieldFirstName: firstName,
		fieldLastName:  lastName,
	})
}

// UpdatePassword replaces the stored password digest.
func (r *Repository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	return r.store.SetFields(ctx, store.AccountKey(email), map[string]string{
		fieldPassword: passwordHash,
	})
}

// List walks every account record via an incremental scan, passwords
// stripped.
func (r *Repository) List(ctx context.Context) ([]*Account, error) {
	keys, err := r.store.ScanKeys(ctx, store.AccountPattern())
	if err != nil {
		return nil, err
	}
	accounts := make([]*Account, 0, len(keys))
	for _, key := range keys {
		fields, err := r.store.GetAll(ctx, key)
		if err != nil {
			return nil, err
		}
		if len(fields) == 0 {
			continue
		}
		accounts = append(accounts, &Account{
			Email:     fields[fieldEmail],
			FirstName: fields[fieldFirstName],
			LastName:  fields[fieldLastName],
		})
	}
	return accounts, nil
}

// DeleteAll removes the account record and its three settings records, one
// DEL per key so the operation stays correct on a key-sharded backend.
// Deletion is best effort: on a mid-way failure the report covers the keys
// already processed and the error carries type/length diagnostics for the
// key that failed. Nothing is rolled back.
func (r *Repository) DeleteAll(ctx context.Context, email string) ([]KeyDeletion, error) {
	report := make([]KeyDeletion, 0, 4)
	for _, key := range store.AllKeys(email) {
		existed, err := r.store.Exists(ctx, key)
		if err != nil {
			return report, fmt.Errorf("probe %s: %w", key, err)
		}
		deleted, err := r.store.Delete(ctx, key)
		if err != nil {
			return report, fmt.Errorf("delete %s: %w", key, r.diagnose(ctx, key, err))
		}
		report = append(report, KeyDeletion{Key: key, ExistedBefore: existed, Deleted: deleted})
	}
	return report, nil
}

// diagnose annotates a failed delete with the key's type and hash length,
// the only place this introspection is used.
func (r *Repository) diagnose(ctx context.Context, key string, cause error) error {
	typ, err := r.store.TypeOf(ctx, key)
	if err != nil {
		return cause
	}
	if typ == "hash" {
		if n, err := r.store.HashLen(ctx, key); err == nil {
			return fmt.Errorf("%w (type=%s fields=%d)", cause, typ, n)
		}
	}
	return fmt.Errorf("%w (type=%s)", cause, typ)
}
