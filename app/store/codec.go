package store

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

// Codec is the reversible encoding applied to records before they are
// written. It keeps raw JSON out of the store; it is not cryptographic and
// callers must not assume confidentiality.
type Codec interface {
	Encode(data []byte) string
	Decode(value string) ([]byte, error)
}

// ObfuscatingCodec percent-encodes the JSON payload and wraps it in base64.
// Both steps are reversible.
type ObfuscatingCodec struct{}

var _ Codec = (*ObfuscatingCodec)(nil)

func NewObfuscatingCodec() *ObfuscatingCodec {
	return &ObfuscatingCodec{}
}

func (c *ObfuscatingCodec) Encode(data []byte) string {
	escaped := url.QueryEscape(string(data))
	return base64.StdEncoding.EncodeToString([]byte(escaped))
}

func (c *ObfuscatingCodec) Decode(value string) ([]byte, error) {
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	unescaped, err := url.QueryUnescape(string(decoded))
	if err != nil {
		return nil, fmt.Errorf("failed to unescape value: %w", err)
	}

	return []byte(unescaped), nil
}

// PlainCodec passes values through unchanged. Used in tests so assertions
// can inspect stored JSON directly.
type PlainCodec struct{}

var _ Codec = (*PlainCodec)(nil)

func NewPlainCodec() *PlainCodec {
	return &PlainCodec{}
}

func (c *PlainCodec) Encode(data []byte) string {
	return string(data)
}

func (c *PlainCodec) Decode(value string) ([]byte, error) {
	return []byte(value), nil
}
