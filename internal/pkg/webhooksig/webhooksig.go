// Package webhooksig computes and checks the HMAC-SHA256 signatures carried by
// provider webhooks.
package webhooksig

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// FormSignatureField is the form field that carries the signature itself and is
// left out of the signed payload.
const FormSignatureField = "hmac"

// CanonicalForm concatenates key+value for every field except the signature,
// keys sorted alphabetically. Only the first value of a repeated key is used.
func CanonicalForm(values map[string][]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == FormSignatureField {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		if vs := values[k]; len(vs) > 0 {
			b.WriteString(vs[0])
		}
	}
	return b.String()
}

// SignForm returns the hex HMAC of the canonical form.
func SignForm(values map[string][]string, secret string) string {
	return sign([]byte(CanonicalForm(values)), secret)
}

// VerifyForm reports whether the form's own signature field matches.
func VerifyForm(values map[string][]string, secret string) bool {
	supplied := values[FormSignatureField]
	if len(supplied) == 0 || supplied[0] == "" {
		return false
	}
	return equal(SignForm(values, secret), supplied[0])
}

// SignBody returns the hex HMAC of a raw request body.
func SignBody(body []byte, secret string) string {
	return sign(body, secret)
}

// VerifyBody reports whether signature is the hex HMAC of body.
func VerifyBody(body []byte, secret, signature string) bool {
	if signature == "" {
		return false
	}
	return equal(SignBody(body, secret), signature)
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func equal(expected, supplied string) bool {
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(supplied))))
}
