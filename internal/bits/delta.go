package bits

// PrefixSum16 replaces data with its running prefix sum in place: the
// delta decoding step.
func PrefixSum16(data []int16) {
	var sum int16
	for i, v := range data {
		sum += v
		data[i] = sum
	}
}

func PrefixSum32(data []int32) {
	var sum int32
	for i, v := range data {
		sum += v
		data[i] = sum
	}
}

func PrefixSum64(data []int64) {
	var sum int64
	for i, v := range data {
		sum += v
		data[i] = sum
	}
}
