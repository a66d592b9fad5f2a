package signer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cometbft/cometbft/libs/tempfile"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// Wallet pairs an owner registry with the signature ledger collected
// for one transaction message. Signatures are bound to the exact
// message bytes they were produced over, so a ledger is never reused
// across messages: a new transaction gets a new wallet.
type Wallet struct {
	registry *OwnerRegistry
	ledger   *SignatureLedger
	message  []byte
}

// NewWallet creates a wallet with an empty ledger for the given message.
func NewWallet(registry *OwnerRegistry, message []byte) *Wallet {
	msg := make([]byte, len(message))
	copy(msg, message)
	return &Wallet{
		registry: registry,
		ledger:   NewSignatureLedger(),
		message:  msg,
	}
}

func (w *Wallet) Registry() *OwnerRegistry { return w.registry }

func (w *Wallet) Ledger() *SignatureLedger { return w.ledger }

// Message returns the transaction message under authorization.
func (w *Wallet) Message() []byte { return w.message }

// walletRecord is the persistent form of a wallet: the registered
// owner keys, the threshold, and the collected signatures. The
// transaction message is not persisted; it binds at load time.
type walletRecord struct {
	Owners     map[string][]byte `json:"owners"`
	Threshold  int               `json:"threshold"`
	Signatures map[string][]byte `json:"signatures"`
}

// SaveWallet writes the wallet to path with an atomic file replace, so
// a crash mid-write cannot leave a truncated wallet behind.
func SaveWallet(path string, wallet *Wallet) error {
	record := walletRecord{
		Owners:     make(map[string][]byte, wallet.registry.Size()),
		Threshold:  wallet.registry.Threshold(),
		Signatures: make(map[string][]byte),
	}
	for id, pub := range wallet.registry.Owners() {
		record.Owners[id] = pub
	}
	for id, sig := range wallet.ledger.Entries() {
		record.Signatures[id] = sig
	}

	bz, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return newSerializationError("encode", err)
	}
	if err := tempfile.WriteFileAtomic(path, bz, 0600); err != nil {
		return newSerializationError("write", err)
	}
	return nil
}

// LoadWallet reads a wallet from path and binds it to message. The
// stored owner set and threshold pass through the same validation as a
// fresh registry, and a signature entry for an owner missing from the
// stored registry fails the load rather than being silently dropped.
func LoadWallet(path string, message []byte) (*Wallet, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, newSerializationError("read", err)
	}

	record := walletRecord{}
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil, newSerializationError("decode", err)
	}

	owners := make(map[string]pqc.PublicKey, len(record.Owners))
	for id, pub := range record.Owners {
		owners[id] = pqc.PublicKey(pub)
	}

	registry, err := NewOwnerRegistry(owners, record.Threshold)
	if err != nil {
		return nil, err
	}

	wallet := NewWallet(registry, message)
	for id, sig := range record.Signatures {
		if _, ok := registry.Lookup(id); !ok {
			return nil, newSerializationError("decode",
				fmt.Errorf("signature entry for unknown owner %s", id))
		}
		wallet.ledger.Record(id, pqc.Signature(sig))
	}

	return wallet, nil
}

// LoadOrCreateWallet loads the wallet at path if one exists, otherwise
// persists and returns a fresh wallet with an empty ledger.
func LoadOrCreateWallet(path string, registry *OwnerRegistry, message []byte) (*Wallet, error) {
	if _, err := os.Stat(path); err == nil {
		return LoadWallet(path, message)
	} else if !os.IsNotExist(err) {
		return nil, newSerializationError("read", err)
	}

	wallet := NewWallet(registry, message)
	if err := SaveWallet(path, wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}
