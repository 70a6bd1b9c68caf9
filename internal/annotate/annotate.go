package annotate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"knot/internal/date"
	"knot/internal/task"
)

var tagRe = regexp.MustCompile(`(?i)\[(date|d|priority|p):([^\]]+)\]`)

// Parsed is what remains of raw input once annotation tags are pulled out.
type Parsed struct {
	Text     string
	Due      *time.Time
	Priority task.Priority
}

// Parse extracts [date:...]/[d:...] and [priority:...]/[p:...] tags from
// raw input. Tag keywords are case-insensitive and when the same kind
// appears twice the last one wins. Every recognized tag is stripped from
// the text, including tags whose content turns out to be invalid: a bad
// priority keyword leaves priority at none, an unresolvable date leaves the
// due date unset. Parse itself never fails.
func Parse(ref time.Time, raw string) Parsed {
	return ParseWithPivot(ref, raw, date.DefaultYearPivot)
}

func ParseWithPivot(ref time.Time, raw string, pivot int) Parsed {
	var dueExpr, priExpr string
	var hasDue, hasPri bool

	for _, m := range tagRe.FindAllStringSubmatch(raw, -1) {
		switch strings.ToLower(m[1]) {
		case "date", "d":
			dueExpr = m[2]
			hasDue = true
		default:
			priExpr = m[2]
			hasPri = true
		}
	}

	text := tagRe.ReplaceAllString(raw, "")
	p := Parsed{Text: strings.Join(strings.Fields(text), " ")}

	if hasPri {
		if pri, ok := task.ParsePriority(priExpr); ok {
			p.Priority = pri
		}
	}
	if hasDue {
		if due, err := date.ResolveWithPivot(ref, dueExpr, pivot); err == nil {
			p.Due = &due
		}
	}
	return p
}

// Render rebuilds the raw annotated form of a task for edit prefill.
// Parsing the rendered string yields the original fields back.
func Render(text string, due *time.Time, pri task.Priority) string {
	var b strings.Builder
	b.WriteString(text)
	if due != nil {
		fmt.Fprintf(&b, " [d:%d/%d/%04d]", int(due.Month()), due.Day(), due.Year())
	}
	if pri != task.PriorityNone {
		fmt.Fprintf(&b, " [p:%s]", pri)
	}
	return strings.TrimSpace(b.String())
}
