package changes

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/jonathan/resume-assistant/internal/llm"
)

// Markers delimiting the machine-readable payload inside a reply.
const (
	StartMarker = "<RESUME_CHANGES>"
	EndMarker   = "</RESUME_CHANGES>"
)

// Parsed is the result of reading one assistant reply.
type Parsed struct {
	// Text is the full reply as received.
	Text string `json:"content"`
	// Display is the reply with every payload region removed.
	Display string `json:"display"`
	// Changes are the candidate edits, in payload order.
	Changes []Change `json:"changes"`
	// Warnings describe payload problems; the reply is still usable as advice.
	Warnings []string `json:"warnings,omitempty"`
}

// HasChanges reports whether the reply proposed any edits.
func (p Parsed) HasChanges() bool {
	return len(p.Changes) > 0
}

// ParseReply extracts candidate changes from a reply. Only the first complete
// marker region is read. It never fails: a missing region yields no changes,
// and a malformed one yields no changes plus a warning.
func ParseReply(reply string) Parsed {
	parsed := Parsed{
		Text:    reply,
		Display: StripPayload(reply),
		Changes: []Change{},
	}

	payload, ok := payloadRegion(reply)
	if !ok {
		return parsed
	}
	parsed.Changes, parsed.Warnings = DecodeCandidates([]byte(payload))
	return parsed
}

// StripPayload removes every complete marker region and trims the result.
func StripPayload(reply string) string {
	var sb strings.Builder
	rest := reply
	for {
		start := strings.Index(rest, StartMarker)
		if start < 0 {
			break
		}
		end := strings.Index(rest[start+len(StartMarker):], EndMarker)
		if end < 0 {
			break
		}
		sb.WriteString(rest[:start])
		rest = rest[start+len(StartMarker)+end+len(EndMarker):]
	}
	sb.WriteString(rest)
	return strings.TrimSpace(sb.String())
}

// payloadRegion returns the text between the first start marker and the
// first end marker after it.
func payloadRegion(reply string) (string, bool) {
	start := strings.Index(reply, StartMarker)
	if start < 0 {
		return "", false
	}
	body := reply[start+len(StartMarker):]
	end := strings.Index(body, EndMarker)
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(body[:end]), true
}

// DecodeCandidates reads a JSON object or array of objects into candidate
// changes. A lone object is treated as a one-element list. Elements that are
// not objects, or lack a non-empty string section or action, are dropped with
// a warning.
func DecodeCandidates(payload []byte) ([]Change, []string) {
	text := llm.CleanJSONBlock(string(payload))
	if !gjson.Valid(text) {
		return []Change{}, []string{"change payload is not valid JSON"}
	}

	root := gjson.Parse(text)
	var items []gjson.Result
	switch {
	case root.IsObject():
		items = []gjson.Result{root}
	case root.IsArray():
		items = root.Array()
	default:
		return []Change{}, []string{"change payload must be a JSON object or array"}
	}

	out := make([]Change, 0, len(items))
	var warnings []string
	for i, item := range items {
		c, reason := candidateFrom(item)
		if reason != "" {
			warnings = append(warnings, fmt.Sprintf("change %d discarded: %s", i, reason))
			continue
		}
		out = append(out, c)
	}
	return out, warnings
}

func candidateFrom(item gjson.Result) (Change, string) {
	if !item.IsObject() {
		return Change{}, "not a JSON object"
	}
	section := item.Get("section")
	action := item.Get("action")
	if !section.Exists() || !action.Exists() {
		return Change{}, "missing section or action"
	}
	if section.Type != gjson.String || action.Type != gjson.String {
		return Change{}, "section and action must be strings"
	}
	if section.Str == "" || action.Str == "" {
		return Change{}, "empty section or action"
	}

	c := Change{
		Section: section.Str,
		Action:  action.Str,
		Index:   rawField(item, "index"),
		Data:    rawField(item, "data"),
	}
	if expl := item.Get("explanation"); expl.Type == gjson.String {
		c.Explanation = expl.Str
	}
	return c, ""
}

func rawField(item gjson.Result, key string) json.RawMessage {
	r := item.Get(key)
	if !r.Exists() {
		return nil
	}
	return json.RawMessage(r.Raw)
}
