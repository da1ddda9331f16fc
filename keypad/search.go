package keypad

// Exhaustive tries every code from 0 to 10^n-1 in order and returns the one
// the keypad accepts.
func Exhaustive(k *Full) string {
	searchSpace := Space(k.Digits())
	for i := int64(0); i < searchSpace; i++ {
		if k.Submit(i) {
			return k.Format(i)
		}
	}
	// unreachable for a secret inside the search space
	return ""
}

// Greedy resolves the code one position at a time, keeping the first digit
// the keypad accepts for each position.
func Greedy(k *Incremental) string {
	for position := 0; position < k.Digits(); position++ {
	digits:
		for guess := 0; guess < 10; guess++ {
			switch k.CheckDigit(guess, position) {
			case Miss:
				continue
			case Match:
				break digits
			case Complete:
				return k.Code()
			}
		}
	}
	return ""
}
