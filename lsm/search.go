package lsm

// leftSearch finds the largest index in [0, n) for which good holds,
// assuming good is monotone (true, then false) over the range. Returns
// -1 if no such index exists. A bracket-and-halve external-memory
// binary search: l = -1, r = n.
func leftSearch(n int64, good func(i int64) (bool, error)) (int64, error) {
	l, r := int64(-1), n
	for r-l > 1 {
		mid := l + (r-l)/2
		ok, err := good(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			l = mid
		} else {
			r = mid
		}
	}
	return l, nil
}

// rightSearch finds the smallest index in [0, n) for which good holds.
// Returns -1 if good never holds (r == n after the search).
func rightSearch(n int64, good func(i int64) (bool, error)) (int64, error) {
	l, r := int64(-1), n
	for r-l > 1 {
		mid := l + (r-l)/2
		ok, err := good(mid)
		if err != nil {
			return 0, err
		}
		if ok {
			r = mid
		} else {
			l = mid
		}
	}
	if r == n {
		return -1, nil
	}
	return r, nil
}
