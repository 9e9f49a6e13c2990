package notification

// Log is a per-profile append-only notification log read newest first.
// Notifications appended together keep their relative order at the head.
type Log struct {
	entries []Notification // newest first
}

// Append prepends a batch raised by one evaluation.
func (l *Log) Append(batch ...Notification) {
	if len(batch) == 0 {
		return
	}
	entries := make([]Notification, 0, len(batch)+len(l.entries))
	entries = append(entries, batch...)
	l.entries = append(entries, l.entries...)
}

// Len returns the number of notifications.
func (l *Log) Len() int {
	return len(l.entries)
}

// NewestFirst returns a copy of the log, newest notification first.
func (l *Log) NewestFirst() []Notification {
	out := make([]Notification, len(l.entries))
	copy(out, l.entries)
	return out
}

// CountByKind returns the number of notifications per kind.
func (l *Log) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, len(Kinds()))
	for _, k := range Kinds() {
		counts[k] = 0
	}
	for _, n := range l.entries {
		counts[n.Kind]++
	}
	return counts
}
