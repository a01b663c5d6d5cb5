package google

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no token is stored for an account.
var ErrNoToken = errors.New("no Google OAuth token stored")

// FileTokenStore keeps one token file per account in a directory.
type FileTokenStore struct {
	dir string
	enc *TokenEncryption
}

// NewFileTokenStore creates a store rooted at dir. A non-empty key enables
// encryption of the token files.
func NewFileTokenStore(dir string, key []byte) (*FileTokenStore, error) {
	if dir == "" {
		dir = DefaultTokenDir()
	}
	enc, err := NewTokenEncryption(key)
	if err != nil {
		return nil, err
	}
	return &FileTokenStore{dir: dir, enc: enc}, nil
}

// Dir returns the directory holding the token files.
func (s *FileTokenStore) Dir() string {
	return s.dir
}

// Path returns the token file for account.
func (s *FileTokenStore) Path(account string) string {
	return filepath.Join(s.dir, "google-"+account+".token")
}

// Has reports whether a token file exists for account.
func (s *FileTokenStore) Has(account string) bool {
	if ValidateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(s.Path(account))
	return err == nil
}

// Load reads the token stored for account.
func (s *FileTokenStore) Load(account string) (*oauth2.Token, error) {
	if err := ValidateAccountName(account); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(account))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w for account %s", ErrNoToken, account)
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	plain, err := s.enc.Decrypt(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(plain, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	return &tok, nil
}

// Save writes the token for account with 0600 permissions.
func (s *FileTokenStore) Save(account string, tok *oauth2.Token) error {
	if err := ValidateAccountName(account); err != nil {
		return err
	}
	if tok == nil {
		return errors.New("token is nil")
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	data, err = s.enc.Encrypt(data)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".google-*.token.tmp")
	if err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path(account)); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// DefaultTokenDir returns the per-user cache directory for travelcal tokens.
func DefaultTokenDir() string {
	return filepath.Join(userCacheDir(), "travelcal")
}

func userCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir
	}
	if runtime.GOOS == "windows" {
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}
