package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const hostKeyBits = 3072

// Initialize writes a default configuration and a fresh SSH host key into
// the directory, then loads the result. Files that already exist are kept.
func Initialize(fsys afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	if err := fsys.MkdirAll(path, 0700); err != nil {
		return nil, err
	}

	configPath := filepath.Join(path, ConfigurationName)
	if _, err := fsys.Stat(configPath); os.IsNotExist(err) {
		logger.Printf("Writing %s", configPath)
		if err := afero.WriteFile(fsys, configPath, defaultConfigData, 0600); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		logger.Printf("Keeping existing %s", configPath)
	}

	keyPath := filepath.Join(path, HostKeyName)
	if _, err := fsys.Stat(keyPath); os.IsNotExist(err) {
		logger.Printf("Generating %s (%d bit RSA)", keyPath, hostKeyBits)
		keyPem, err := generateHostKey()
		if err != nil {
			return nil, err
		}
		if err := afero.WriteFile(fsys, keyPath, keyPem, 0600); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else {
		logger.Printf("Keeping existing %s", keyPath)
	}

	if err := fsys.MkdirAll(filepath.Join(path, SessionLogsDirName), 0700); err != nil {
		return nil, err
	}

	return Load(fsys, path)
}

func generateHostKey() ([]byte, error) {
	key, err := rsa.GenerateKey(rand.Reader, hostKeyBits)
	if err != nil {
		return nil, err
	}

	return pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), nil
}
