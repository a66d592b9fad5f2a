package signer

import (
	"sort"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// OwnerRegistry is the trust anchor of a wallet: the owner identities,
// their verification keys, and the signature threshold required to
// authorize a transaction. The registry is immutable after
// construction; changing membership or threshold means creating a new
// wallet.
type OwnerRegistry struct {
	owners    map[string]pqc.PublicKey
	threshold int
}

// NewOwnerRegistry validates and copies the owner set. The threshold
// must satisfy 1 <= threshold <= len(owners).
func NewOwnerRegistry(owners map[string]pqc.PublicKey, threshold int) (*OwnerRegistry, error) {
	if len(owners) == 0 || threshold < 1 || threshold > len(owners) {
		return nil, newInvalidThresholdError(threshold, len(owners))
	}

	copied := make(map[string]pqc.PublicKey, len(owners))
	for id, pub := range owners {
		key := make(pqc.PublicKey, len(pub))
		copy(key, pub)
		copied[id] = key
	}

	return &OwnerRegistry{
		owners:    copied,
		threshold: threshold,
	}, nil
}

// Lookup returns the registered public key for an owner.
func (r *OwnerRegistry) Lookup(ownerID string) (pqc.PublicKey, bool) {
	pub, ok := r.owners[ownerID]
	return pub, ok
}

// Threshold returns the number of distinct valid owner signatures
// required to authorize a transaction.
func (r *OwnerRegistry) Threshold() int {
	return r.threshold
}

// Size returns the number of registered owners.
func (r *OwnerRegistry) Size() int {
	return len(r.owners)
}

// OwnerIDs returns the registered owner identifiers in sorted order.
func (r *OwnerRegistry) OwnerIDs() []string {
	ids := make([]string, 0, len(r.owners))
	for id := range r.owners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Owners returns a copy of the owner-to-public-key mapping.
func (r *OwnerRegistry) Owners() map[string]pqc.PublicKey {
	copied := make(map[string]pqc.PublicKey, len(r.owners))
	for id, pub := range r.owners {
		copied[id] = pub
	}
	return copied
}
