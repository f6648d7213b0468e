package bot

import (
	"fmt"
	"strings"

	"repost_bot/internal/scheduler"
)

// FormatStatus renders the /status reply. lifetime is the archived
// all-time publish count, or negative when unavailable.
func FormatStatus(snap scheduler.Snapshot, queueLen, lifetime int) string {
	var b strings.Builder
	b.WriteString("✅ Bot online\n")
	if snap.Paused {
		b.WriteString("State: paused\n")
	} else {
		b.WriteString("State: running\n")
	}
	if snap.LastPostAt.IsZero() {
		b.WriteString("Last post: none\n")
	} else {
		fmt.Fprintf(&b, "Last post: %s (message %d)\n",
			snap.LastPostAt.Format("2006-01-02 15:04:05"), snap.LastMessageID)
	}
	fmt.Fprintf(&b, "Queued: %d\n", queueLen)
	fmt.Fprintf(&b, "Posted this session: %d\n", snap.Posted)
	if lifetime >= 0 {
		fmt.Fprintf(&b, "Posted all time: %d\n", lifetime)
	}
	return b.String()
}

// FormatStats renders the /stats reply.
func FormatStats(snap scheduler.Snapshot, queueLen int) string {
	return fmt.Sprintf("Stats: posted=%d, filtered=%d, queue=%d",
		snap.Posted, snap.Filtered, queueLen)
}
