package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// ValidateAddress checks that address is a well-formed base58 Solana pubkey.
func ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid wallet address: %w", err)
	}
	return nil
}

// VerifySignature checks that signature is a valid ed25519 signature of
// message by the key behind the base58 wallet address. The signature may be
// base58 (Solana wallet standard) or hex encoded.
func VerifySignature(address, message, signature string) error {
	pubKey, err := base58.Decode(address)
	if err != nil {
		return fmt.Errorf("invalid public key format: %w", err)
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return errors.New("invalid public key length")
	}

	sig, err := base58.Decode(signature)
	if err != nil {
		sig, err = hex.DecodeString(signature)
		if err != nil {
			return errors.New("invalid signature format")
		}
	}
	if len(sig) != ed25519.SignatureSize {
		return errors.New("invalid signature length")
	}

	if !ed25519.Verify(ed25519.PublicKey(pubKey), []byte(message), sig) {
		return errors.New("signature does not match wallet")
	}

	return nil
}
