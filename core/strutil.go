package core

import "golang.org/x/exp/constraints"

// itoa converts a signed integer to a string without using fmt package
// This is a lightweight alternative for embedded systems
func itoa[T constraints.Signed](n T) string {
	if n >= 0 {
		return utoa(uint64(n))
	}
	// -(n+1)+1 avoids overflowing the most negative value
	return "-" + utoa(uint64(-(n+1))+1)
}

// utoa converts an unsigned integer to a string
func utoa[T constraints.Unsigned](n T) string {
	if n == 0 {
		return "0"
	}

	var buf [20]byte // Enough for the largest uint64
	pos := len(buf)

	for n > 0 {
		pos--
		buf[pos] = byte('0' + n%10)
		n /= 10
	}

	return string(buf[pos:])
}

// groupDigits inserts thousands separators, e.g. 1234567 -> "1,234,567"
func groupDigits(s string) string {
	start := 0
	if len(s) > 0 && s[0] == '-' {
		start = 1
	}
	digits := len(s) - start
	if digits <= 3 {
		return s
	}

	out := make([]byte, 0, len(s)+digits/3)
	out = append(out, s[:start]...)
	lead := digits % 3
	if lead == 0 {
		lead = 3
	}
	out = append(out, s[start:start+lead]...)
	for i := start + lead; i < len(s); i += 3 {
		out = append(out, ',')
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
