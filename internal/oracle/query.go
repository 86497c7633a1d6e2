package oracle

// InRange returns the observations with start <= timestamp <= end, in stored order.
func InRange(history []PriceData, start, end uint64) []PriceData {
	out := []PriceData{}
	for _, pd := range history {
		if pd.Timestamp >= start && pd.Timestamp <= end {
			out = append(out, pd)
		}
	}
	return out
}

// LastN returns a copy of the last min(n, len(history)) observations.
func LastN(history []PriceData, n uint32) []PriceData {
	start := 0
	if uint64(n) < uint64(len(history)) {
		start = len(history) - int(n)
	}
	return append([]PriceData{}, history[start:]...)
}

// Latest returns the last observation of a history.
func Latest(history []PriceData) (PriceData, bool) {
	last := LastN(history, 1)
	if len(last) == 0 {
		return PriceData{}, false
	}
	return last[0], true
}

// At returns the most recent observation stamped exactly ts.
func At(history []PriceData, ts uint64) (PriceData, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Timestamp == ts {
			return history[i], true
		}
	}
	return PriceData{}, false
}
