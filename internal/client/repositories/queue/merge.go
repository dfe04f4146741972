package queue

// Merge returns the entry to store when next is enqueued while existing is
// still waiting for the same record.
//
// A queued create absorbs later updates, so the server sees a single create
// with the latest payload. Any delete wins. In every other case the later
// operation replaces the earlier one. The merged entry keeps the queue
// position of existing and starts over with no attempts.
func Merge(existing, next Entry) Entry {
	merged := next
	merged.Seq = existing.Seq
	merged.EnqueuedAt = existing.EnqueuedAt
	merged.Attempts = 0
	merged.LastError = ""
	merged.Status = StatusPending

	if existing.Kind == KindCreate && next.Kind == KindUpdate {
		merged.Kind = KindCreate
	}
	if merged.Kind == KindDelete {
		merged.Payload = nil
	}
	return merged
}
