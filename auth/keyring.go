// Package auth keeps per-source API tokens in the system keyring.
package auth

import (
	"errors"

	"github.com/anisan-cli/anifeed/constant"
	"github.com/anisan-cli/anifeed/log"
	"github.com/samber/mo"
	"github.com/zalando/go-keyring"
)

var service = constant.App

// SetToken stores token for the source with the given ID.
func SetToken(sourceID, token string) error {
	return keyring.Set(service, sourceID, token)
}

// Token returns the stored token for sourceID, if any.
// A keyring that cannot be reached is treated as holding no token.
func Token(sourceID string) mo.Option[string] {
	token, err := keyring.Get(service, sourceID)
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Warnf("auth: keyring unavailable: %s", err)
		}
		return mo.None[string]()
	}

	if token == "" {
		return mo.None[string]()
	}

	return mo.Some(token)
}

// DeleteToken removes the token of sourceID.
func DeleteToken(sourceID string) error {
	return keyring.Delete(service, sourceID)
}
