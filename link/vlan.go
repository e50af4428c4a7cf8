package link

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ExpandVLANs expands a VLAN list such as "1-3,5" into [1 2 3 5].
// Ranges are inclusive. The result is sorted and free of duplicates.
func ExpandVLANs(spec string) ([]int, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var result []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := parseVLAN(lo)
		if err != nil {
			return nil, err
		}
		end := start
		if isRange {
			if end, err = parseVLAN(hi); err != nil {
				return nil, err
			}
			if start > end {
				return nil, fmt.Errorf("invalid vlan range %s", part)
			}
		}
		for v := start; v <= end; v++ {
			result = append(result, v)
		}
	}
	return normalize(result), nil
}

// FormatVLANs renders VLANs as a comma separated list, in ascending order.
func FormatVLANs(vlans []int) string {
	parts := make([]string, 0, len(vlans))
	for _, v := range normalize(vlans) {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, ",")
}

func parseVLAN(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid vlan %q", s)
	}
	if v < 1 || v > 4094 {
		return 0, fmt.Errorf("vlan %d out of range", v)
	}
	return v, nil
}

// SortedVLANs returns a sorted copy of vlans without duplicates.
func SortedVLANs(vlans []int) []int {
	return normalize(vlans)
}

// normalize returns a sorted copy of vlans without duplicates.
func normalize(vlans []int) []int {
	if len(vlans) == 0 {
		return nil
	}
	out := append([]int(nil), vlans...)
	sort.Ints(out)
	n := 1
	for i := 1; i < len(out); i++ {
		if out[i] != out[n-1] {
			out[n] = out[i]
			n++
		}
	}
	return out[:n]
}
