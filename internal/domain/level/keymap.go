package level

// Legacy keys belong to the fixed five-level scheme that predates per-role
// registries. Only the IC track has a legacy predecessor.
const (
	LegacyAssociate    = "associate"
	LegacyIntermediate = "intermediate"
	LegacySenior       = "senior"
	LegacyLead         = "lead"
	LegacyPrincipal    = "principal"
)

func LegacyKeys() []string {
	return []string{LegacyAssociate, LegacyIntermediate, LegacySenior, LegacyLead, LegacyPrincipal}
}

func LegacyToNew(key string) (string, bool) {
	switch key {
	case LegacyAssociate:
		return "p1_entry", true
	case LegacyIntermediate:
		return "p2_developing", true
	case LegacySenior:
		return "p3_career", true
	case LegacyLead:
		return "p4_advanced", true
	case LegacyPrincipal:
		return "p5_principal", true
	default:
		return "", false
	}
}

func NewToLegacy(key string) (string, bool) {
	switch key {
	case "p1_entry":
		return LegacyAssociate, true
	case "p2_developing":
		return LegacyIntermediate, true
	case "p3_career":
		return LegacySenior, true
	case "p4_advanced":
		return LegacyLead, true
	case "p5_principal":
		return LegacyPrincipal, true
	default:
		return "", false
	}
}

// MapKey translates a key through whichever table knows it.
func MapKey(key string) (string, bool) {
	if k, ok := LegacyToNew(key); ok {
		return k, true
	}
	return NewToLegacy(key)
}

func IsLegacyKey(key string) bool {
	_, ok := LegacyToNew(key)
	return ok
}
