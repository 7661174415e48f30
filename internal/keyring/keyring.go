// Package keyring remembers billcycle passwords in the OS keyring, one entry
// per history store.
package keyring

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const serviceName = "billcycle"

// ErrNotStored is returned when no password is stored for the store.
var ErrNotStored = errors.New("no password in keyring")

// SavePassword stores a password in the OS keyring
func SavePassword(storeID string, password []byte) error {
	return keyring.Set(serviceName, storeID, string(password))
}

// GetPassword retrieves a password from the OS keyring
func GetPassword(storeID string) ([]byte, error) {
	password, err := keyring.Get(serviceName, storeID)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotStored
		}
		return nil, err
	}
	return []byte(password), nil
}

// DeletePassword removes a password from the OS keyring
func DeletePassword(storeID string) error {
	err := keyring.Delete(serviceName, storeID)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotStored
	}
	return err
}

// HasPassword checks if a password is stored in the keyring
func HasPassword(storeID string) bool {
	_, err := keyring.Get(serviceName, storeID)
	return err == nil
}
