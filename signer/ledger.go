package signer

import (
	"sort"
	"sync"

	"github.com/0rlych1kk4/quantum-safe-multisig/signer/pqc"
)

// SignatureLedger collects owner signatures for one transaction
// message. At most one entry is kept per owner; recording again
// replaces the previous entry. Entries are not verified on insert.
// Validity is recomputed against the registry on every CountValid
// call, so tampered or cross-message entries simply stop counting.
type SignatureLedger struct {
	mu      sync.Mutex
	entries map[string]pqc.Signature
}

func NewSignatureLedger() *SignatureLedger {
	return &SignatureLedger{
		entries: make(map[string]pqc.Signature),
	}
}

// Record stores sig as the owner's contribution, replacing any
// previous entry for the same owner.
func (l *SignatureLedger) Record(ownerID string, sig pqc.Signature) {
	entry := make(pqc.Signature, len(sig))
	copy(entry, sig)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[ownerID] = entry
}

// Signature returns the recorded signature for an owner.
func (l *SignatureLedger) Signature(ownerID string) (pqc.Signature, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	sig, ok := l.entries[ownerID]
	return sig, ok
}

// Size returns the number of recorded entries.
func (l *SignatureLedger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// OwnerIDs returns the owners with recorded entries in sorted order.
func (l *SignatureLedger) OwnerIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Entries returns a copy of the recorded entries.
func (l *SignatureLedger) Entries() map[string]pqc.Signature {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := make(map[string]pqc.Signature, len(l.entries))
	for id, sig := range l.entries {
		copied[id] = sig
	}
	return copied
}

// CountValid returns how many recorded entries currently hold a valid
// signature over message for a key in the registry. Entries from
// owners missing from the registry count zero. Verification runs on a
// snapshot so concurrent Record calls are not blocked.
func (l *SignatureLedger) CountValid(message []byte, registry *OwnerRegistry, scheme *pqc.Scheme) int {
	valid := 0
	for ownerID, sig := range l.Entries() {
		pub, ok := registry.Lookup(ownerID)
		if !ok {
			continue
		}
		if scheme.Verify(message, sig, pub) {
			valid++
		}
	}
	return valid
}
