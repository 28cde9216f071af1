package payload

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/vango-dev/authsync/pkg/authstate"
	"github.com/vango-dev/authsync/pkg/env"
)

// Read decodes the embedded payload from doc: the global slot first, then
// the meta-tag trio, first success wins. A nil result means no payload
// was found — a valid state, not a fault. Malformed embeddings at either
// stage are swallowed and treated as absence. Reading is idempotent.
func Read(doc env.Document) *Payload {
	if raw, ok := doc.GlobalSlot(); ok {
		if p, ok := Decode(raw); ok {
			return p
		}
	}
	return readMeta(doc)
}

// Decode parses a raw global-slot (or ready-event detail) blob. ok is
// false when the blob is not structurally valid.
func Decode(raw []byte) (*Payload, bool) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	if p.Timestamp <= 0 {
		return nil, false
	}
	return &p, true
}

// readMeta reconstructs the payload from the percent-encoded meta trio.
// Date-typed sub-fields (session expiry/creation, user creation) come
// back from their RFC 3339 strings via the JSON decoding of the sanitized
// types.
func readMeta(doc env.Document) *Payload {
	ts, present, valid := metaJSON(doc, MetaTimestamp)
	if !present || !valid {
		return nil
	}
	timestamp, err := strconv.ParseInt(ts, 10, 64)
	if err != nil || timestamp <= 0 {
		return nil
	}

	p := Payload{Timestamp: timestamp}

	if raw, present, valid := metaJSON(doc, MetaUser); present {
		if !valid {
			return nil
		}
		var user *authstate.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil
		}
		p.User = user
	}
	if raw, present, valid := metaJSON(doc, MetaSession); present {
		if !valid {
			return nil
		}
		var session *authstate.Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return nil
		}
		p.Session = session
	}
	return &p
}

// metaJSON reads and percent-decodes one meta tag.
func metaJSON(doc env.Document, name string) (decoded string, present, valid bool) {
	content, ok := doc.MetaContent(name)
	if !ok {
		return "", false, false
	}
	decoded, err := url.QueryUnescape(content)
	if err != nil {
		return "", true, false
	}
	return decoded, true, true
}
