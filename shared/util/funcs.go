package util

// Lerp realiza interpolação linear entre dois floats.
func Lerp(start, end, amount float32) float32 {
	return start + amount*(end-start)
}

// Clamp limita v ao intervalo [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Max retorna o maior de dois float32.
func Max(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// Min retorna o menor de dois float32.
func Min(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
