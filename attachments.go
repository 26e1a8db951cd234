package logctx

import "sync/atomic"

// AttachmentKey identifies an attachment. Keys are compared by identity, so
// two keys created with the same name address different attachments; the
// name exists for diagnostics only. Create one per attachment, typically in
// a package-level var, and share it between the attaching and reading sides.
type AttachmentKey struct {
	name string
}

// NewAttachmentKey returns a new, unique attachment key.
func NewAttachmentKey(name string) *AttachmentKey {
	return &AttachmentKey{name: name}
}

func (k *AttachmentKey) String() string { return k.name }

// emptyAttachments is the canonical empty snapshot. Detaching the last entry
// installs this exact map rather than an equivalent fresh one, so an empty
// store always holds the same instance.
var emptyAttachments = &map[*AttachmentKey]any{}

// attachmentStore holds an immutable snapshot map behind an atomic pointer.
// Reads load the current snapshot and index it; writes copy, edit, and swap.
// A reader therefore never observes a partially applied update and never
// contends with writers.
type attachmentStore struct {
	snap atomic.Pointer[map[*AttachmentKey]any]
}

func (s *attachmentStore) init() {
	s.snap.Store(emptyAttachments)
}

func (s *attachmentStore) get(key *AttachmentKey) any {
	if key == nil {
		return nil
	}
	return (*s.snap.Load())[key]
}

// attach maps key to value and returns the previously mapped value, or nil
// if the key was absent.
func (s *attachmentStore) attach(key *AttachmentKey, value any) any {
	for {
		old := s.snap.Load()
		prev := (*old)[key]
		next := make(map[*AttachmentKey]any, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[key] = value
		if s.snap.CompareAndSwap(old, &next) {
			return prev
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

// attachIfAbsent maps key to value only if the key has no current mapping.
// It returns nil on success, or the existing value, untouched, when the key
// is already mapped. At most one of any set of racing callers succeeds.
func (s *attachmentStore) attachIfAbsent(key *AttachmentKey, value any) any {
	for {
		old := s.snap.Load()
		if existing, ok := (*old)[key]; ok {
			return existing
		}
		next := make(map[*AttachmentKey]any, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[key] = value
		if s.snap.CompareAndSwap(old, &next) {
			return nil
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

// detach removes key's mapping and returns the removed value, or nil if the
// key was absent. Removing the final entry installs the canonical empty
// snapshot.
func (s *attachmentStore) detach(key *AttachmentKey) any {
	for {
		old := s.snap.Load()
		prev, ok := (*old)[key]
		if !ok {
			return nil
		}
		var nextPtr *map[*AttachmentKey]any
		if len(*old) == 1 {
			nextPtr = emptyAttachments
		} else {
			next := make(map[*AttachmentKey]any, len(*old)-1)
			for k, v := range *old {
				if k == key {
					continue
				}
				next[k] = v
			}
			nextPtr = &next
		}
		if s.snap.CompareAndSwap(old, nextPtr) {
			return prev
		}
		NewMetrics().SnapshotRetries.Inc()
	}
}

// clear swaps in the canonical empty snapshot and returns the displaced map
// so the caller can dispose of its values.
func (s *attachmentStore) clear() map[*AttachmentKey]any {
	return *s.snap.Swap(emptyAttachments)
}
