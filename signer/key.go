package signer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

var ErrUnsupportedKeyType = errors.New("unsupported key type")

// OwnerKey is the on-disk key material for one owner: the public key
// registered in the wallet and the private key loaded by a LocalSigner
// or a gateway vault token.
type OwnerKey struct {
	Owner      string         `json:"owner"`
	KeyType    string         `json:"keyType"`
	PublicKey  pqc.PublicKey  `json:"publicKey"`
	PrivateKey pqc.PrivateKey `json:"privateKey"`
}

func (key *OwnerKey) UnmarshalJSON(data []byte) error {
	type Alias OwnerKey
	aux := (*Alias)(key)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if key.KeyType == "" {
		key.KeyType = pqc.KeyType
	}
	if key.KeyType != pqc.KeyType {
		return fmt.Errorf("%w: %s", ErrUnsupportedKeyType, key.KeyType)
	}
	return nil
}

// LoadOwnerKey loads an owner key from file.
func LoadOwnerKey(file string) (*OwnerKey, error) {
	key := new(OwnerKey)

	bz, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(bz, key); err != nil {
		return nil, fmt.Errorf("error unmarshalling owner key: %w", err)
	}
	return key, nil
}

// WriteOwnerKeyFile writes an owner key to file, readable only by the
// owning user.
func WriteOwnerKeyFile(key OwnerKey, file string) error {
	jsonBytes, err := json.MarshalIndent(&key, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(file, jsonBytes, 0600)
}

// CreateOwnerKeys generates a fresh key pair for every named owner.
// Generation runs in parallel.
func CreateOwnerKeys(scheme *pqc.Scheme, owners ...string) ([]OwnerKey, error) {
	out := make([]OwnerKey, len(owners))
	var eg errgroup.Group
	for i, owner := range owners {
		i, owner := i, owner
		eg.Go(func() error {
			pub, priv, err := scheme.GenerateKey()
			if err != nil {
				return err
			}
			out[i] = OwnerKey{
				Owner:      owner,
				KeyType:    pqc.KeyType,
				PublicKey:  pub,
				PrivateKey: priv,
			}
			return nil
		})
	}
	return out, eg.Wait()
}
