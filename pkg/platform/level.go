package platform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// APILevel is the release level reported by the host platform.
type APILevel int

// Unknown is reported when no level could be read.
const Unknown APILevel = 0

const (
	N               APILevel = 24
	NMR1            APILevel = 25
	O               APILevel = 26
	OMR1            APILevel = 27
	P               APILevel = 28
	Q               APILevel = 29
	R               APILevel = 30
	S               APILevel = 31
	SV2             APILevel = 32
	Tiramisu        APILevel = 33
	UpsideDownCake  APILevel = 34
	VanillaIceCream APILevel = 35
)

var ErrInvalidLevel = errors.New("invalid api level")

var codeNames = map[APILevel]string{
	N:               "N",
	NMR1:            "N_MR1",
	O:               "O",
	OMR1:            "O_MR1",
	P:               "P",
	Q:               "Q",
	R:               "R",
	S:               "S",
	SV2:             "S_V2",
	Tiramisu:        "TIRAMISU",
	UpsideDownCake:  "UPSIDE_DOWN_CAKE",
	VanillaIceCream: "VANILLA_ICE_CREAM",
}

// CodeName returns the version code name, or "" when the level has none.
func (l APILevel) CodeName() string {
	return codeNames[l]
}

func (l APILevel) String() string {
	if name := l.CodeName(); name != "" {
		return fmt.Sprintf("%s (%d)", name, int(l))
	}
	return strconv.Itoa(int(l))
}

// ParseAPILevel accepts a decimal level or a code name such as "O", "o_mr1" or
// "tiramisu".
func ParseAPILevel(s string) (APILevel, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown, fmt.Errorf("%w: empty", ErrInvalidLevel)
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return Unknown, fmt.Errorf("%w: %d", ErrInvalidLevel, n)
		}
		return APILevel(n), nil
	}
	want := normalizeCodeName(s)
	for level, name := range codeNames {
		if normalizeCodeName(name) == want {
			return level, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

func normalizeCodeName(s string) string {
	return strings.ToUpper(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
}
