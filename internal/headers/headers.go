// Package headers maps a validated identity onto the fixed set of headers
// forwarded to upstream applications.
package headers

import (
	"encoding/base64"

	"github.com/dgellow/auth-front/internal/idp"
)

// Header names of the identity contract with upstream applications.
const (
	UserID       = "X-User-Id"
	UserEmail    = "X-User-Email"
	UserName     = "X-User-Name"
	NameEncoding = "X-User-Name-Encoding"
)

// EncodingBase64 is the value of the NameEncoding header. The display name
// may contain arbitrary Unicode, which is not welcome in an HTTP header, so
// it is always base64-encoded and the encoding is declared explicitly.
const EncodingBase64 = "base64"

// Encode maps an identity onto the outbound headers. Absent fields become
// empty values, never omitted headers; upstreams rely on header presence.
// The id and email are forwarded verbatim: the id is provider-assigned and
// opaque, and email is plain ASCII in practice.
func Encode(identity idp.Identity) map[string]string {
	return map[string]string{
		UserID:       identity.ID,
		UserEmail:    identity.Email,
		UserName:     base64.StdEncoding.EncodeToString([]byte(identity.Name)),
		NameEncoding: EncodingBase64,
	}
}

// DecodeName reverses the display-name encoding, as an upstream would.
func DecodeName(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
