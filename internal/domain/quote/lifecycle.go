package quote

// transitions is the complete adjacency table. Anything absent is illegal, including
// a transition to the current status.
var transitions = map[Status][]Status{
	StatusBrouillon:     {StatusEnvoye, StatusRefuse},
	StatusEnvoye:        {StatusEnNegociation, StatusRefuse},
	StatusEnNegociation: {StatusAccepte, StatusRefuse},
	StatusAccepte:       {StatusEnReparation},
	StatusRefuse:        nil,
	StatusEnReparation:  nil,
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Targets lists the statuses reachable in one step from s.
func Targets(s Status) []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

func IsTerminal(s Status) bool {
	t, known := transitions[s]
	return known && len(t) == 0
}

func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return "", false
	}
	return st, true
}
