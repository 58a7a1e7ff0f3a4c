// Package storage is the file-backed credential store for enrolled
// visitors. Portraits and descriptors are encrypted at rest using NaCl
// secretbox with a machine-derived key.
package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/recognition"
)

const (
	// NonceSize is the size of the nonce used for encryption.
	NonceSize = 24
	// KeySize is the size of the encryption key.
	KeySize = 32
)

// Credential is one enrolled visitor: the processed portrait and, once
// computed, the reference descriptor.
type Credential struct {
	Subject      string                  `json:"subject"`
	Image        []byte                  `json:"image"`
	Descriptor   []float32               `json:"descriptor,omitempty"`
	EnrolledAt   time.Time               `json:"enrolled_at"`
	LastVerified time.Time               `json:"last_verified,omitempty"`
}

// HasDescriptor reports whether a reference descriptor has been computed.
func (c *Credential) HasDescriptor() bool {
	return len(c.Descriptor) == recognition.DescriptorLen
}

// Reference returns the stored descriptor.
func (c *Credential) Reference() (recognition.Descriptor, error) {
	if !c.HasDescriptor() {
		return recognition.Descriptor{}, fmt.Errorf("credential for %s has no descriptor", c.Subject)
	}
	var d recognition.Descriptor
	copy(d[:], c.Descriptor)
	return d, nil
}

// SetDescriptor stores a reference descriptor.
func (c *Credential) SetDescriptor(d recognition.Descriptor) {
	c.Descriptor = append([]float32(nil), d[:]...)
}

// ErrNotFound is returned when the subject is not enrolled.
var ErrNotFound = errors.New("credential not found")

// ErrExists is returned when enrolling an already enrolled subject.
var ErrExists = errors.New("subject already enrolled")

// ErrEncryption is returned when encryption or decryption fails.
var ErrEncryption = errors.New("encryption error")

// FileStore keeps one encrypted file per subject under dataDir/credentials.
type FileStore struct {
	dataDir           string
	encryptionEnabled bool
	encryptionKey     [KeySize]byte
}

// NewFileStore creates a FileStore rooted at dataDir.
func NewFileStore(dataDir string, encryptionEnabled bool) (*FileStore, error) {
	fs := &FileStore{
		dataDir:           dataDir,
		encryptionEnabled: encryptionEnabled,
	}

	if encryptionEnabled {
		key, err := deriveKey()
		if err != nil {
			return nil, fmt.Errorf("failed to derive encryption key: %w", err)
		}
		fs.encryptionKey = key
	}

	credsDir := filepath.Join(dataDir, "credentials")
	if err := os.MkdirAll(credsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	return fs, nil
}

// deriveKey derives an encryption key from machine-specific information,
// tying stored credentials to this machine.
func deriveKey() ([KeySize]byte, error) {
	var key [KeySize]byte
	var identity strings.Builder

	if machineID, err := os.ReadFile("/etc/machine-id"); err == nil {
		identity.Write(machineID)
	}
	if hostname, err := os.Hostname(); err == nil {
		identity.WriteString(hostname)
	}
	identity.WriteString(fmt.Sprintf("%d", os.Getuid()))
	identity.WriteString("facegate-v1-salt")

	hash := sha256.Sum256([]byte(identity.String()))
	copy(key[:], hash[:])

	return key, nil
}

func (fs *FileStore) credentialPath(subject string) string {
	filename := subject + ".json"
	if fs.encryptionEnabled {
		filename = subject + ".enc"
	}
	return filepath.Join(fs.dataDir, "credentials", filename)
}

// Save writes a credential.
func (fs *FileStore) Save(cred Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}

	if fs.encryptionEnabled {
		data, err = fs.encrypt(data)
		if err != nil {
			return fmt.Errorf("failed to encrypt credential: %w", err)
		}
	}

	if err := os.WriteFile(fs.credentialPath(cred.Subject), data, 0600); err != nil {
		return fmt.Errorf("failed to write credential: %w", err)
	}

	logging.Component("storage").Debugf("saved credential for %s", cred.Subject)
	return nil
}

// Load reads a credential.
func (fs *FileStore) Load(subject string) (*Credential, error) {
	data, err := os.ReadFile(fs.credentialPath(subject))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	if fs.encryptionEnabled {
		data, err = fs.decrypt(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt credential: %w", err)
		}
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return &cred, nil
}

// Delete removes a credential.
func (fs *FileStore) Delete(subject string) error {
	if err := os.Remove(fs.credentialPath(subject)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	logging.Component("storage").Infof("deleted credential for %s", subject)
	return nil
}

// List returns all enrolled subjects.
func (fs *FileStore) List() ([]string, error) {
	credsDir := filepath.Join(fs.dataDir, "credentials")

	entries, err := os.ReadDir(credsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list credentials: %w", err)
	}

	var subjects []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".json") {
			subjects = append(subjects, strings.TrimSuffix(name, ".json"))
		} else if strings.HasSuffix(name, ".enc") {
			subjects = append(subjects, strings.TrimSuffix(name, ".enc"))
		}
	}

	return subjects, nil
}

// Exists checks whether a subject is enrolled.
func (fs *FileStore) Exists(subject string) bool {
	_, err := os.Stat(fs.credentialPath(subject))
	return err == nil
}

// SaveImage enrolls the processed portrait for a subject. It implements
// the capture package's CredentialStore.
func (fs *FileStore) SaveImage(ctx context.Context, subject string, image []byte) error {
	if fs.Exists(subject) {
		return ErrExists
	}

	return fs.Save(Credential{
		Subject:    subject,
		Image:      image,
		EnrolledAt: time.Now(),
	})
}

// UpdateDescriptor stores the reference descriptor on an existing
// credential.
func (fs *FileStore) UpdateDescriptor(subject string, d recognition.Descriptor) error {
	cred, err := fs.Load(subject)
	if err != nil {
		return err
	}
	cred.SetDescriptor(d)
	return fs.Save(*cred)
}

// UpdateLastVerified stamps a successful verification.
func (fs *FileStore) UpdateLastVerified(subject string) error {
	cred, err := fs.Load(subject)
	if err != nil {
		return err
	}
	cred.LastVerified = time.Now()
	return fs.Save(*cred)
}

func (fs *FileStore) encrypt(plaintext []byte) ([]byte, error) {
	var nonce [NonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, err
	}

	return secretbox.Seal(nonce[:], plaintext, &nonce, &fs.encryptionKey), nil
}

func (fs *FileStore) decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < NonceSize {
		return nil, ErrEncryption
	}

	var nonce [NonceSize]byte
	copy(nonce[:], ciphertext[:NonceSize])

	plaintext, ok := secretbox.Open(nil, ciphertext[NonceSize:], &nonce, &fs.encryptionKey)
	if !ok {
		return nil, ErrEncryption
	}

	return plaintext, nil
}
