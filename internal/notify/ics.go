package notify

import (
	"fmt"
	"strings"
	"time"
)

// ICalEvent describes the calendar invite attached to a confirmation
// email (RFC 5545, method REQUEST).
type ICalEvent struct {
	UID            string
	Summary        string
	Description    string
	Location       string
	Start          time.Time
	End            time.Time
	OrganizerName  string
	OrganizerEmail string
}

const icalTimestampLayout = "20060102T150405Z"

// Render produces the serialized VCALENDAR. Timestamps are emitted in
// UTC; stamp is the generation instant (injected so output is testable).
func (e ICalEvent) Render(stamp time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Agenda//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:REQUEST",
		"BEGIN:VEVENT",
		"DTSTART:" + e.Start.UTC().Format(icalTimestampLayout),
		"DTEND:" + e.End.UTC().Format(icalTimestampLayout),
		"DTSTAMP:" + stamp.UTC().Format(icalTimestampLayout),
		"UID:" + e.UID,
		"DESCRIPTION:" + escapeICalText(e.Description),
		"LOCATION:" + escapeICalText(e.Location),
		"SUMMARY:" + escapeICalText(e.Summary),
	}
	if e.OrganizerEmail != "" {
		lines = append(lines, fmt.Sprintf("ORGANIZER;CN=%q:mailto:%s", escapeICalText(e.OrganizerName), e.OrganizerEmail))
	}
	lines = append(lines,
		"STATUS:CONFIRMED",
		"TRANSP:OPAQUE",
		"END:VEVENT",
		"END:VCALENDAR",
	)
	return strings.Join(lines, "\r\n")
}

func escapeICalText(text string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\n", `\n`,
	)
	return r.Replace(text)
}
