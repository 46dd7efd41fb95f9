package validate

import "strings"

// Calendar and clock format checks for DATE, TIME and DATETIME column values.
// The accepted grammar is strict ISO-8601 subset:
//
//	DATE     := YYYY-MM-DD              (real calendar day, leap-year aware)
//	TIME     := HH:MM:SS[.frac][Z|±HH:MM]
//	DATETIME := DATE "T" TIME
//
// stdlib time.Parse is deliberately not used here: a single layout string
// cannot express the optional fraction/zone combinations, and time.Parse
// accepts out-of-layout variations these checks must reject.

// ValidDate reports whether s is a strict YYYY-MM-DD date naming a real
// calendar day. February has 29 days only in leap years.
func ValidDate(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	year, ok := digits(s[0:4])
	if !ok {
		return false
	}
	month, ok := digits(s[5:7])
	if !ok || month < 1 || month > 12 {
		return false
	}
	day, ok := digits(s[8:10])
	if !ok || day < 1 || day > daysInMonth(year, month) {
		return false
	}
	return true
}

// ValidTime reports whether s is HH:MM:SS with an optional all-digit
// fractional part and an optional Z or ±HH:MM zone suffix.
func ValidTime(s string) bool {
	if len(s) < 8 {
		return false
	}
	if !validClock(s[0:8]) {
		return false
	}
	rest := s[8:]
	if rest == "" {
		return true
	}

	if rest[0] == '.' {
		frac := rest[1:]
		end := len(frac)
		for i := 0; i < len(frac); i++ {
			if frac[i] < '0' || frac[i] > '9' {
				end = i
				break
			}
		}
		if end == 0 {
			return false
		}
		rest = frac[end:]
	}

	switch {
	case rest == "":
		return true
	case rest == "Z":
		return true
	case len(rest) == 6 && (rest[0] == '+' || rest[0] == '-') && rest[3] == ':':
		hh, ok := digits(rest[1:3])
		if !ok || hh > 23 {
			return false
		}
		mm, ok := digits(rest[4:6])
		return ok && mm <= 59
	default:
		return false
	}
}

// ValidDatetime reports whether s is "<DATE>T<TIME>" where both halves
// independently satisfy the DATE and TIME rules.
func ValidDatetime(s string) bool {
	t := strings.IndexByte(s, 'T')
	if t < 0 {
		return false
	}
	return ValidDate(s[:t]) && ValidTime(s[t+1:])
}

func validClock(s string) bool {
	if s[2] != ':' || s[5] != ':' {
		return false
	}
	hour, ok := digits(s[0:2])
	if !ok || hour > 23 {
		return false
	}
	minute, ok := digits(s[3:5])
	if !ok || minute > 59 {
		return false
	}
	second, ok := digits(s[6:8])
	return ok && second <= 59
}

func digits(s string) (int, bool) {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
	}
	return n, true
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if isLeapYear(year) {
			return 29
		}
		return 28
	}
}

func isLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}
