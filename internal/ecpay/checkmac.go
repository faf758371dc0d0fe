// internal/ecpay/checkmac.go
package ecpay

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMissingCredentials indicates the hash key or IV was not configured.
// Callers must fail before constructing any order or accepting any callback.
var ErrMissingCredentials = errors.New("ecpay: hash key and IV are required")

// Signer computes CheckMacValue digests over ECPay parameter sets.
type Signer struct {
	hashKey string
	hashIV  string
}

func NewSigner(hashKey, hashIV string) (*Signer, error) {
	if hashKey == "" || hashIV == "" {
		return nil, ErrMissingCredentials
	}
	return &Signer{hashKey: hashKey, hashIV: hashIV}, nil
}

// CheckMacValue computes the digest over all parameters except any
// pre-existing CheckMacValue field: sort keys case-insensitively, join k=v
// pairs with &, wrap with HashKey/HashIV, percent-encode the whole string,
// lowercase it, SHA-256, uppercase hex. The encode-then-lowercase order
// matches ECPay's reference implementation and must not be swapped.
func (s *Signer) CheckMacValue(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "CheckMacValue" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	raw := fmt.Sprintf("HashKey=%s&%s&HashIV=%s", s.hashKey, strings.Join(pairs, "&"), s.hashIV)
	encoded := strings.ToLower(encodeURIComponent(raw))

	sum := sha256.Sum256([]byte(encoded))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// Verify recomputes the digest and compares it with the received value.
func (s *Signer) Verify(params map[string]string, received string) bool {
	return received != "" && s.CheckMacValue(params) == received
}

// encodeURIComponent reproduces the JavaScript function of the same name,
// which the gateway's digest canonicalization is defined against. It leaves
// A-Z a-z 0-9 - _ . ! ~ * ' ( ) unescaped and hex-escapes every other byte.
func encodeURIComponent(s string) string {
	const unreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.!~*'()"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if strings.IndexByte(unreserved, c) >= 0 {
			b.WriteByte(c)
		} else {
			b.WriteString(fmt.Sprintf("%%%02X", c))
		}
	}
	return b.String()
}
