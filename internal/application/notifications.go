package application

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// DetectorMode selects how newly arrived remote notifications are recognised.
type DetectorMode string

const (
	// DetectorCursor alerts every notification absent from the previous collection.
	DetectorCursor DetectorMode = "cursor"
	// DetectorLength alerts the newest entry once whenever the collection grew.
	DetectorLength DetectorMode = "length"
)

// ParseDetectorMode maps a configuration value to a detector mode.
func ParseDetectorMode(value string) (DetectorMode, bool) {
	switch DetectorMode(strings.ToLower(strings.TrimSpace(value))) {
	case DetectorCursor, "":
		return DetectorCursor, true
	case DetectorLength:
		return DetectorLength, true
	}
	return "", false
}

// NotificationDetector decides which notifications of a freshly fetched collection
// deserve a local alert.
type NotificationDetector interface {
	// Observe records the collection and returns the entries to alert, newest first.
	Observe(notifications []AppNotification) []AppNotification
	// Seen records a notification created locally so it is not alerted again.
	Seen(notification AppNotification)
}

// NewNotificationDetector returns the detector for mode.
func NewNotificationDetector(mode DetectorMode) NotificationDetector {
	if mode == DetectorLength {
		return &lengthDetector{}
	}
	return &cursorDetector{}
}

// lengthDetector compares collection sizes between ticks. It misses edits, deletions
// that coincide with additions, and reports only the newest of several additions. An
// empty previous collection never alerts.
type lengthDetector struct {
	mu    sync.Mutex
	count int
}

func (d *lengthDetector) Observe(notifications []AppNotification) []AppNotification {
	d.mu.Lock()
	defer d.mu.Unlock()

	previous := d.count
	d.count = len(notifications)
	if previous == 0 || len(notifications) <= previous {
		return nil
	}
	return []AppNotification{notifications[0]}
}

func (d *lengthDetector) Seen(AppNotification) {
	d.mu.Lock()
	d.count++
	d.mu.Unlock()
}

// cursorDetector remembers the notifications of the previous remote collection and
// alerts every entry it has not met before, whatever its timestamp. Locally created
// notifications are held back until the remote collection echoes them.
type cursorDetector struct {
	mu       sync.Mutex
	observed bool
	seen     map[string]struct{}
	local    map[string]struct{}
}

func (d *cursorDetector) Observe(notifications []AppNotification) []AppNotification {
	d.mu.Lock()
	defer d.mu.Unlock()

	current := make(map[string]struct{}, len(notifications))
	var fresh []AppNotification
	for _, n := range notifications {
		key := notificationKey(n)
		if _, dup := current[key]; dup {
			continue
		}
		current[key] = struct{}{}
		if _, ok := d.seen[key]; ok {
			continue
		}
		if _, ok := d.local[key]; ok {
			delete(d.local, key)
			continue
		}
		fresh = append(fresh, n)
	}
	d.seen = current

	if !d.observed {
		d.observed = true
		return nil
	}
	sortNotificationsNewestFirst(fresh)
	return fresh
}

func (d *cursorDetector) Seen(notification AppNotification) {
	d.mu.Lock()
	if d.local == nil {
		d.local = make(map[string]struct{})
	}
	d.local[notificationKey(notification)] = struct{}{}
	d.mu.Unlock()
}

// notificationKey identifies a notification by id, or by timestamp and message when
// the id is missing.
func notificationKey(n AppNotification) string {
	if id := strings.TrimSpace(n.ID); id != "" {
		return "id:" + id
	}
	return "at:" + n.Timestamp + "|" + n.Message
}

func parseTimestamp(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// sortNotificationsNewestFirst orders notifications by timestamp, newest first.
// Entries with unparsable timestamps sort last and keep their relative order.
func sortNotificationsNewestFirst(notifications []AppNotification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		a, okA := parseTimestamp(notifications[i].Timestamp)
		b, okB := parseTimestamp(notifications[j].Timestamp)
		if okA != okB {
			return okA
		}
		return a.After(b)
	})
}
