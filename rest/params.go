// Package rest implements the typed client for the exchange REST API.
package rest

import (
	"net/url"
	"strconv"
	"strings"
)

// Params is an ordered set of request parameters. Signed endpoints hash the
// encoded query exactly as sent, so encoding preserves insertion order rather
// than sorting keys.
type Params struct {
	pairs []paramPair
}

type paramPair struct {
	key   string
	value string
}

// NewParams returns an empty parameter set.
func NewParams() *Params { return &Params{} }

// Set appends key=value. Setting the same key again appends another pair.
func (p *Params) Set(key, value string) *Params {
	p.pairs = append(p.pairs, paramPair{key, value})
	return p
}

// SetInt appends key with a base-10 integer value.
func (p *Params) SetInt(key string, value int64) *Params {
	return p.Set(key, strconv.FormatInt(value, 10))
}

// SetOptional appends key only when value is non-empty.
func (p *Params) SetOptional(key, value string) *Params {
	if value != "" {
		p.Set(key, value)
	}
	return p
}

// SetOptionalInt appends key only when value is non-nil.
func (p *Params) SetOptionalInt(key string, value *int64) *Params {
	if value != nil {
		p.SetInt(key, *value)
	}
	return p
}

// Len reports the number of pairs.
func (p *Params) Len() int { return len(p.pairs) }

// Encode renders the query string in insertion order with both keys and
// values escaped.
func (p *Params) Encode() string {
	if len(p.pairs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(pair.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(pair.value))
	}
	return b.String()
}
