package app

import (
	"fmt"
	"os"

	"github.com/aura-clinic/aura/pkg/cryptox"
	"github.com/aura-clinic/aura/pkg/jwtx"
)

// loadOrGenerateSigner reads the Ed25519 signing key from the configured
// file, generating and persisting one on first start so issued tokens
// survive a restart. The kid is derived from the key material, so it stays
// stable across restarts and changes when the key is rotated.
func loadOrGenerateSigner(path string) (jwtx.Signer, error) {
	pemKey, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		pemKey, err = cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("generate signing key: %w", err)
		}
		if err := os.WriteFile(path, pemKey, 0600); err != nil {
			return nil, fmt.Errorf("persist signing key: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	kid := cryptox.FingerprintToken(string(pemKey))[:16]
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, err
	}
	if err := signer.Validate(); err != nil {
		return nil, err
	}
	return signer, nil
}
