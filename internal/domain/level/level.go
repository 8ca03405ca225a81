package level

import (
	"errors"
	"fmt"
	"strings"
)

type RoleType string

const (
	RoleTypeIC         RoleType = "ic"
	RoleTypeManagement RoleType = "management"
)

var ErrUnknownRoleType = errors.New("unknown role type")

type Level struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"order_index"`
}

func ParseRoleType(raw string) (RoleType, error) {
	switch RoleType(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleTypeIC:
		return RoleTypeIC, nil
	case RoleTypeManagement:
		return RoleTypeManagement, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRoleType, raw)
	}
}

// DefaultLevels returns a fresh copy of the built-in sequence for the role type.
func DefaultLevels(t RoleType) ([]Level, error) {
	switch t {
	case RoleTypeIC:
		return icLevels(), nil
	case RoleTypeManagement:
		return managementLevels(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoleType, string(t))
	}
}

func icLevels() []Level {
	return []Level{
		{Key: "p1_entry", Label: "P1 Entry", Description: "Learning the role; works on well-scoped tasks with guidance.", OrderIndex: 0},
		{Key: "p2_developing", Label: "P2 Developing", Description: "Delivers independently on defined work and grows scope.", OrderIndex: 1},
		{Key: "p3_career", Label: "P3 Career", Description: "Fully proficient; owns outcomes across a team's area.", OrderIndex: 2},
		{Key: "p4_advanced", Label: "P4 Advanced", Description: "Leads across teams and sets technical direction.", OrderIndex: 3},
		{Key: "p5_principal", Label: "P5 Principal", Description: "Shapes direction for the organization.", OrderIndex: 4},
	}
}

func managementLevels() []Level {
	return []Level{
		{Key: "m1_manager", Label: "M1 Manager", Description: "Manages a single team.", OrderIndex: 0},
		{Key: "m2_senior_manager", Label: "M2 Senior Manager", Description: "Manages a larger team or managers of small teams.", OrderIndex: 1},
		{Key: "m3_director", Label: "M3 Director", Description: "Leads a group of teams through managers.", OrderIndex: 2},
		{Key: "m4_senior_director", Label: "M4 Senior Director", Description: "Leads a department.", OrderIndex: 3},
	}
}

// ShortCode is the key prefix before the first underscore, e.g. "p1" for "p1_entry".
func ShortCode(key string) string {
	if i := strings.IndexByte(key, '_'); i >= 0 {
		return key[:i]
	}
	return key
}

func Find(levels []Level, key string) (Level, bool) {
	for _, l := range levels {
		if l.Key == key {
			return l, true
		}
	}
	return Level{}, false
}
