package service

import "encoding/base64"

// IdentityCodec turns logical room ids into URL-safe tokens and back.
type IdentityCodec interface {
	Encode(logicalID string) string
	// Decode never fails. Input that is not the canonical encoding of some id
	// is returned as is, so raw ids keep working.
	Decode(token string) string
}

type base64Codec struct{}

func NewIdentityCodec() IdentityCodec {
	return base64Codec{}
}

var tokenEncodings = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.StdEncoding,
	base64.RawStdEncoding,
}

func (base64Codec) Encode(logicalID string) string {
	if logicalID == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(logicalID))
}

func (base64Codec) Decode(token string) string {
	if token == "" {
		return ""
	}

	for _, enc := range tokenEncodings {
		raw, err := enc.DecodeString(token)
		if err != nil {
			continue
		}
		// reject tokens with stray trailing bits
		if enc.EncodeToString(raw) == token {
			return string(raw)
		}
	}

	return token
}
