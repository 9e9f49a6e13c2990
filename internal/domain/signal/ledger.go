package signal

import (
	"github.com/alem-hub/wellness-hub/internal/domain/notification"
)

// Ledger records, per rule signature, the fingerprint of the last emitted
// notification while its condition stays satisfied. A signature is absent
// once its condition clears or its subject entry is gone.
type Ledger map[notification.Signature]string

// Clone returns an independent copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Active reports whether sig is currently satisfied.
func (l Ledger) Active(sig notification.Signature) bool {
	_, ok := l[sig]
	return ok
}

// shouldEmit reports whether a match recorded as fingerprint under sig is new.
func (l Ledger) shouldEmit(sig notification.Signature, fingerprint string) bool {
	prev, ok := l[sig]
	return !ok || prev != fingerprint
}
