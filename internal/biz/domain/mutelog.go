package domain

import (
	"strings"
	"time"
)

// MuteStatus is the outcome recorded for a blocked notification
type MuteStatus string

const (
	MuteStatusMuted     MuteStatus = "Muted"     // blocked but no dismiss action was available
	MuteStatusDismissed MuteStatus = "Dismissed" // dismiss action invoked
)

// UnknownGroupName is logged when the notification had no usable title
const UnknownGroupName = "Unknown"

// Mute log retention and dedup limits
const (
	MaxMuteLogEntries = 300
	DedupWindow       = 10 * time.Second
	DedupGCThreshold  = 200
	DedupRetention    = 60 * time.Second
)

// ParseMuteStatus parses a stored status, reporting false for unknown values
func ParseMuteStatus(s string) (MuteStatus, bool) {
	switch MuteStatus(s) {
	case MuteStatusMuted:
		return MuteStatusMuted, true
	case MuteStatusDismissed:
		return MuteStatusDismissed, true
	}
	return "", false
}

// MuteLogEntry is one line of the audit trail
type MuteLogEntry struct {
	Timestamp   int64      `json:"timestamp"` // epoch milliseconds
	GroupName   string     `json:"groupName"`
	Status      MuteStatus `json:"status"`
	MessageText string     `json:"messageText"`
}

// Time returns the entry timestamp as a time.Time
func (e *MuteLogEntry) Time() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// MuteLog is a newest-first list bounded to a fixed capacity
type MuteLog struct {
	entries  []MuteLogEntry
	capacity int
}

// NewMuteLog creates a mute log holding at most capacity entries
func NewMuteLog(capacity int, existing []MuteLogEntry) *MuteLog {
	if capacity < 0 {
		capacity = 0
	}
	l := &MuteLog{capacity: capacity}
	if len(existing) > capacity {
		existing = existing[:capacity]
	}
	l.entries = append(make([]MuteLogEntry, 0, capacity), existing...)
	return l
}

// Prepend inserts the entry at the front and drops entries beyond capacity from the tail
func (l *MuteLog) Prepend(e MuteLogEntry) {
	if l.capacity <= 0 {
		return
	}
	if len(l.entries) < l.capacity {
		l.entries = append(l.entries, MuteLogEntry{})
	}
	copy(l.entries[1:], l.entries)
	l.entries[0] = e
}

// Entries returns a copy of the entries, newest first
func (l *MuteLog) Entries() []MuteLogEntry {
	out := make([]MuteLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries
func (l *MuteLog) Len() int {
	return len(l.entries)
}

// Fingerprints identifies a log-worthy event for burst dedup
type Fingerprints struct {
	Full    string // event id + group + text
	Content string // group + text, catches reposts under a new id
}

// NewFingerprints builds both fingerprints for an event
func NewFingerprints(eventID, groupName, text string) Fingerprints {
	content := strings.ToLower(strings.TrimSpace(groupName)) + "|" + strings.ToLower(text)
	return Fingerprints{
		Full:    eventID + "|" + content,
		Content: content,
	}
}

// DedupTracker remembers when fingerprints were last logged.
// It is not safe for concurrent use; callers hold their own lock.
type DedupTracker struct {
	full    map[string]int64
	content map[string]int64
}

// NewDedupTracker creates an empty tracker
func NewDedupTracker() *DedupTracker {
	return &DedupTracker{
		full:    make(map[string]int64),
		content: make(map[string]int64),
	}
}

// IsDuplicate reports whether either fingerprint was marked within DedupWindow of nowMs
func (d *DedupTracker) IsDuplicate(fp Fingerprints, nowMs int64) bool {
	window := DedupWindow.Milliseconds()
	if last, ok := d.full[fp.Full]; ok && nowMs-last <= window {
		return true
	}
	if last, ok := d.content[fp.Content]; ok && nowMs-last <= window {
		return true
	}
	return false
}

// Mark records both fingerprints at nowMs and purges stale entries from any map over DedupGCThreshold
func (d *DedupTracker) Mark(fp Fingerprints, nowMs int64) {
	d.full[fp.Full] = nowMs
	d.content[fp.Content] = nowMs

	cutoff := nowMs - DedupRetention.Milliseconds()
	if len(d.full) > DedupGCThreshold {
		purgeBefore(d.full, cutoff)
	}
	if len(d.content) > DedupGCThreshold {
		purgeBefore(d.content, cutoff)
	}
}

// Size returns the number of tracked full and content fingerprints
func (d *DedupTracker) Size() (full, content int) {
	return len(d.full), len(d.content)
}

func purgeBefore(m map[string]int64, cutoff int64) {
	for k, seen := range m {
		if seen < cutoff {
			delete(m, k)
		}
	}
}
