package coupon

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// no 0/O/1/I so codes survive being read aloud or retyped
const codeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"

var codeRegex = regexp.MustCompile(`^[2-9A-HJ-NP-Z]{4}-[2-9A-HJ-NP-Z]{4}-[2-9A-HJ-NP-Z]{4}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !codeRegex.MatchString(code) {
		return Code(""), ErrInvalidCode
	}
	return Code(code), nil
}

// GenerateCode returns a random code such as "K7QX-4M2P-ZR9D".
func GenerateCode() (Code, error) {
	var buf [12]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	out := make([]byte, 0, 14)
	for i, b := range buf {
		if i > 0 && i%4 == 0 {
			out = append(out, '-')
		}
		// 256 is a multiple of 32, so the modulo has no bias
		out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
	}
	return Code(out), nil
}

func (c Code) String() string {
	return string(c)
}
