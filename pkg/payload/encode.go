package payload

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// EncodeGlobalSlot returns an HTML script fragment that assigns the
// payload JSON to the global slot and then dispatches the ready event
// with the same payload as its detail.
func EncodeGlobalSlot(p Payload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("payload: encode global slot: %w", err)
	}
	// "</" inside the JSON would terminate the script element early.
	safe := strings.ReplaceAll(string(raw), "</", `<\/`)
	return fmt.Sprintf(
		`<script>window.%s=%s;window.dispatchEvent(new CustomEvent(%q,{detail:window.%s}));</script>`,
		GlobalSlotName, safe, ReadyEventName, GlobalSlotName,
	), nil
}

// EncodeMetaTags returns the fallback embedding: three meta tags carrying
// user, session, and timestamp separately, each content attribute
// percent-encoded JSON.
func EncodeMetaTags(p Payload) (string, error) {
	userJSON, err := json.Marshal(p.User)
	if err != nil {
		return "", fmt.Errorf("payload: encode user meta: %w", err)
	}
	sessionJSON, err := json.Marshal(p.Session)
	if err != nil {
		return "", fmt.Errorf("payload: encode session meta: %w", err)
	}

	var b strings.Builder
	writeMeta(&b, MetaUser, string(userJSON))
	writeMeta(&b, MetaSession, string(sessionJSON))
	writeMeta(&b, MetaTimestamp, strconv.FormatInt(p.Timestamp, 10))
	return b.String(), nil
}

func writeMeta(b *strings.Builder, name, content string) {
	fmt.Fprintf(b, `<meta name=%q content=%q>`+"\n", name, url.QueryEscape(content))
}

// DocumentWriter is the write half of a directly scriptable host
// document, used when the payload is installed without server-rendered
// HTML (tests, non-browser hosts). env.MemoryDocument satisfies it.
type DocumentWriter interface {
	AssignGlobalSlot(raw []byte)
	SetMeta(name, content string)
}

// EncodeInto installs both embeddings of p on doc. The meta trio is
// written first so the fallback is complete before the global-slot
// assignment fires the ready signal.
func EncodeInto(doc DocumentWriter, p Payload) error {
	userJSON, err := json.Marshal(p.User)
	if err != nil {
		return fmt.Errorf("payload: encode user meta: %w", err)
	}
	sessionJSON, err := json.Marshal(p.Session)
	if err != nil {
		return fmt.Errorf("payload: encode session meta: %w", err)
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("payload: encode: %w", err)
	}

	doc.SetMeta(MetaUser, url.QueryEscape(string(userJSON)))
	doc.SetMeta(MetaSession, url.QueryEscape(string(sessionJSON)))
	doc.SetMeta(MetaTimestamp, url.QueryEscape(strconv.FormatInt(p.Timestamp, 10)))
	doc.AssignGlobalSlot(raw)
	return nil
}
