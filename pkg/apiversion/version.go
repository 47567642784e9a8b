package apiversion

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version identifies one point in an API's release history. It covers both
// the flat form (a positive integer level) and the structured
// major[.minor[.patch[-prequality]]] form. Absent trailing components are
// hidden from display but treated as zero for ordering. A prequality string
// sorts below the released version with the same numeric components.
//
// The zero value is None: not a version. Level 0 is reserved and invalid.
type Version struct {
	major int
	minor int // -1 when absent
	patch int // -1 when absent
	pre   string
}

// None is the absent version, used where a version field may be unset.
var None = Version{}

// Sentinels for seeding min/max accumulators during merges. Neither is a
// valid observable version.
var (
	Lowest  = Version{major: 0, minor: -1, patch: -1}
	Highest = Version{major: math.MaxInt32, minor: -1, patch: -1}
)

// New returns the flat level form of a version.
func New(level int) Version {
	return Version{major: level, minor: -1, patch: -1}
}

// Parse reads a version from its textual form: a bare level ("21") or a
// structured "major[.minor[.patch[-prequality]]]" ("35.1.2-rc1").
func Parse(s string) (Version, error) {
	text := s
	pre := ""
	if i := strings.IndexByte(text, '-'); i >= 0 {
		pre = text[i+1:]
		text = text[:i]
		if pre == "" {
			return None, fmt.Errorf("parse version %q: empty prequality", s)
		}
	}

	parts := strings.Split(text, ".")
	if len(parts) > 3 {
		return None, fmt.Errorf("parse version %q: too many components", s)
	}
	nums := [3]int{-1, -1, -1}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (p != "0" && strings.HasPrefix(p, "0")) {
			return None, fmt.Errorf("parse version %q: bad component %q", s, p)
		}
		nums[i] = n
	}
	if nums[0] < 1 {
		return None, fmt.Errorf("parse version %q: level must be positive", s)
	}
	v := Version{major: nums[0], minor: nums[1], patch: nums[2], pre: pre}
	if !semver.IsValid(v.canonical()) {
		return None, fmt.Errorf("parse version %q: bad prequality %q", s, pre)
	}
	return v, nil
}

// MustParse is Parse for known-good literals; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether v is an observable version. The sentinels and the
// zero value are not.
func (v Version) IsValid() bool {
	return v.major >= 1 && v.major < math.MaxInt32
}

// Level returns the major component.
func (v Version) Level() int { return v.major }

// String renders v, hiding absent trailing components.
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.major))
	if v.minor >= 0 {
		b.WriteByte('.')
		b.WriteString(strconv.Itoa(v.minor))
		if v.patch >= 0 {
			b.WriteByte('.')
			b.WriteString(strconv.Itoa(v.patch))
		}
	}
	if v.pre != "" {
		b.WriteByte('-')
		b.WriteString(v.pre)
	}
	return b.String()
}

// canonical renders v in semver form for ordering. Absent components count
// as zero; a prequality maps to a semver prerelease, which sorts below the
// release with the same numbers.
func (v Version) canonical() string {
	var b strings.Builder
	b.WriteByte('v')
	b.WriteString(strconv.Itoa(v.major))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(max(v.minor, 0)))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(max(v.patch, 0)))
	if v.pre != "" {
		b.WriteByte('-')
		b.WriteString(v.pre)
	}
	return b.String()
}

// Compare orders two versions: -1, 0, or +1.
func (v Version) Compare(o Version) int {
	return semver.Compare(v.canonical(), o.canonical())
}

// Before reports v < o.
func (v Version) Before(o Version) bool { return v.Compare(o) < 0 }

// After reports v > o.
func (v Version) After(o Version) bool { return v.Compare(o) > 0 }

// AtMost reports v <= o, the non-strict "introduced no later than" check.
func (v Version) AtMost(o Version) bool { return v.Compare(o) <= 0 }

// Equal reports whether two versions denote the same point, regardless of
// how many components were spelled out.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// Min returns the earlier of v and o.
func Min(v, o Version) Version {
	if o.Before(v) {
		return o
	}
	return v
}

// Max returns the later of v and o.
func Max(v, o Version) Version {
	if o.After(v) {
		return o
	}
	return v
}
