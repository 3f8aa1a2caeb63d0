// Package packer reverses the p.a.c.k.e.r. JavaScript minification scheme.
//
// Packed payloads replace every word of the original script with a base-N
// index into a symbol table, wrapped in a self-evaluating decoder function.
// Providers ship their player configuration through this obfuscation; the
// engine only needs the reverse direction. The implementation is pure and
// deterministic, and validates the radix and symbol count before the
// substitution pass so adversarial input fails fast instead of looping.
package packer

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/streamscout-cli/streamscout/util"
)

// ErrMalformedInput reports a payload that violates the packer structure,
// such as a symbol count that disagrees with the symbol table.
var ErrMalformedInput = errors.New("packer: malformed input")

const (
	minRadix = 2
	maxRadix = 95
)

// alphabet62 covers radixes 37 through 62.
const alphabet62 = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// alphabet95 covers radixes 63 through 95.
const alphabet95 = " !\"#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// argsPattern matches the four decoder arguments inside the wrapper invocation:
// }('payload', radix, count, 'sym|tab'.split('|')
var argsPattern = regexp.MustCompile(
	`(?s)}\s*\(\s*'(?P<payload>.*)'\s*,\s*(?P<radix>\d+)\s*,\s*(?P<count>\d+)\s*,\s*'(?P<symtab>.*?)'\s*\.split\('\|'\)`)

// wordPattern matches the maximal alphanumeric runs subject to substitution.
var wordPattern = regexp.MustCompile(`\b\w+\b`)

// Detect reports whether the text contains a packed payload.
func Detect(src string) bool {
	return strings.Contains(strings.ReplaceAll(src, " ", ""), "eval(function(p,a,c,k,e,")
}

// Unpack decodes a packed payload back into the original source text.
func Unpack(src string) (string, error) {
	groups := util.ReGroups(argsPattern, src)
	if len(groups) == 0 || groups["payload"] == "" {
		return "", fmt.Errorf("%w: no packer invocation found", ErrMalformedInput)
	}

	radix, err := strconv.Atoi(groups["radix"])
	if err != nil || radix < minRadix || radix > maxRadix {
		return "", fmt.Errorf("%w: radix %q out of range", ErrMalformedInput, groups["radix"])
	}

	count, err := strconv.Atoi(groups["count"])
	if err != nil {
		return "", fmt.Errorf("%w: bad symbol count %q", ErrMalformedInput, groups["count"])
	}

	symtab := strings.Split(groups["symtab"], "|")
	if count != len(symtab) {
		return "", fmt.Errorf("%w: symbol count %d does not match table size %d", ErrMalformedInput, count, len(symtab))
	}

	payload := unescape(groups["payload"])
	unbase := newUnbaser(radix)

	return wordPattern.ReplaceAllStringFunc(payload, func(word string) string {
		index, ok := unbase(word)
		if !ok || index < 0 || index >= len(symtab) {
			return word
		}
		if symtab[index] == "" {
			return word
		}
		return symtab[index]
	}), nil
}

// newUnbaser builds the base-N decoder for the substitution pass.
// Ordinary base conversion handles radixes up to 36; larger radixes use a
// custom alphabet with an inverse dictionary built once.
func newUnbaser(radix int) func(string) (int, bool) {
	if radix <= 36 {
		return func(word string) (int, bool) {
			v, err := strconv.ParseInt(strings.ToLower(word), radix, 64)
			if err != nil {
				return 0, false
			}
			return int(v), true
		}
	}

	alphabet := alphabet62
	if radix > 62 {
		alphabet = alphabet95
	}
	alphabet = alphabet[:radix]

	inverse := make(map[rune]int, radix)
	for i, r := range alphabet {
		inverse[r] = i
	}

	return func(word string) (int, bool) {
		value := 0
		for _, r := range word {
			digit, ok := inverse[r]
			if !ok {
				return 0, false
			}
			value = value*radix + digit
		}
		return value, true
	}
}

// unescape undoes the quoting applied to the payload string literal.
func unescape(payload string) string {
	payload = strings.ReplaceAll(payload, `\'`, `'`)
	payload = strings.ReplaceAll(payload, `\\`, `\`)
	return payload
}
