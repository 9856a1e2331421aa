package dice

// D20Roll is the audit trail for an advantage-aware d20 roll.
type D20Roll struct {
	// Rolls holds every raw die drawn, in order.
	Rolls []int
	// Used is the roll that counts after advantage/disadvantage selection.
	Used int
}

// RollD20 draws a d20 with advantage/disadvantage semantics: advantage keeps
// the higher of two rolls, disadvantage the lower, and both together cancel
// out to a single untouched roll.
//
// Precondition: src must be non-nil.
// Postcondition: Used is one of Rolls; 1 <= Used <= 20.
func RollD20(src Source, advantage, disadvantage bool) D20Roll {
	first := src.Intn(20) + 1
	if advantage == disadvantage {
		return D20Roll{Rolls: []int{first}, Used: first}
	}

	second := src.Intn(20) + 1
	used := first
	if advantage && second > first {
		used = second
	}
	if disadvantage && second < first {
		used = second
	}
	return D20Roll{Rolls: []int{first, second}, Used: used}
}
