package util

import "strings"

// ByteLowercase returns a [byte-lowercase] version of str:
// only the ASCII uppercase letters of str are mapped to their lowercase
// counterparts; all other bytes are left alone.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
func ByteLowercase(str string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, str)
}

// ByteUppercase is the counterpart of [ByteLowercase].
func ByteUppercase(str string) string {
	return strings.Map(func(r rune) rune {
		if 'a' <= r && r <= 'z' {
			return r - ('a' - 'A')
		}
		return r
	}, str)
}
