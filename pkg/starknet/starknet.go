package starknet

import (
	"errors"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrInvalidFelt is returned when a value cannot be parsed as a hex felt.
var ErrInvalidFelt = errors.New("invalid felt")

// mask250 keeps the low 250 bits of a keccak digest.
var mask250 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 250), big.NewInt(1))

// NormalizeAddress lowercases an address and strips its leading zeros.
// An all-zero address becomes "0x0". Empty input is returned unchanged.
func NormalizeAddress(address string) string {
	if address == "" {
		return ""
	}
	s := strings.TrimPrefix(strings.ToLower(address), "0x")
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return "0x0"
	}
	return "0x" + s
}

// ShortAddress renders an address as its first six and last four characters.
func ShortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

// HexToASCII decodes a felt-encoded short string.
func HexToASCII(hexString string) string {
	if hexString == "" {
		return "Unknown Name"
	}
	clean := strings.TrimPrefix(hexString, "0x")
	if len(clean)%2 != 0 {
		clean = "0" + clean
	}

	var sb strings.Builder
	for i := 0; i < len(clean); i += 2 {
		code, err := strconv.ParseUint(clean[i:i+2], 16, 8)
		if err != nil {
			return "Invalid Name"
		}
		if code > 0 {
			sb.WriteRune(rune(code))
		}
	}

	trimmed := strings.TrimSpace(sb.String())
	if trimmed == "" {
		return "Unnamed Tribe"
	}
	return trimmed
}

// ParseFelt parses a hex felt such as a zero-padded token id.
func ParseFelt(value string) (uint64, error) {
	s := strings.TrimSpace(value)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return 0, ErrInvalidFelt
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, ErrInvalidFelt
	}
	return n, nil
}

// FeltHex renders n as a 0x-prefixed lowercase hex felt.
func FeltHex(n uint64) string {
	return "0x" + strconv.FormatUint(n, 16)
}

// Selector returns the entry point selector for a function name.
func Selector(name string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	v := new(big.Int).SetBytes(h.Sum(nil))
	v.And(v, mask250)
	return "0x" + v.Text(16)
}
