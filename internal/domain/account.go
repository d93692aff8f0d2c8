package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var accountRefPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// AccountRef identifies a ledger account in shard.realm.num form.
type AccountRef struct {
	Shard uint64
	Realm uint64
	Num   uint64
}

// ParseAccountRef parses a shard.realm.num string. Whitespace, checksums and
// aliases are rejected rather than coerced.
func ParseAccountRef(s string) (AccountRef, error) {
	if !accountRefPattern.MatchString(s) {
		return AccountRef{}, fmt.Errorf("%w: %q", ErrInvalidAccountRef, s)
	}

	var parts [3]uint64
	for i, p := range strings.Split(s, ".") {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return AccountRef{}, fmt.Errorf("%w: component %q out of range", ErrInvalidAccountRef, p)
		}
		parts[i] = n
	}

	return AccountRef{Shard: parts[0], Realm: parts[1], Num: parts[2]}, nil
}

// MustParseAccountRef is ParseAccountRef for constants and tests.
func MustParseAccountRef(s string) AccountRef {
	ref, err := ParseAccountRef(s)
	if err != nil {
		panic(err)
	}
	return ref
}

// String returns the canonical shard.realm.num form.
func (a AccountRef) String() string {
	return fmt.Sprintf("%d.%d.%d", a.Shard, a.Realm, a.Num)
}

// IsZero reports whether a is the unset 0.0.0 reference.
func (a AccountRef) IsZero() bool {
	return a == AccountRef{}
}
