package admission

import (
	"strconv"
	"strings"
)

const (
	DefaultDoctorFee = 1500
	DefaultMisc      = 0
	AmbulanceCharge  = 1500
)

// ComputeTotal derives the bill from the selected options. Pure; all inputs
// are assumed non-negative (see ParseAmount for the lenient entry policy).
func ComputeTotal(doctorFee, roomCharge, foodCharge int64, ambulanceUsed bool, misc int64) int64 {
	total := doctorFee + roomCharge + foodCharge + misc
	if ambulanceUsed {
		total += AmbulanceCharge
	}
	return total
}

// ParseAmount turns an operator-entered amount into a non-negative value.
// Empty, unparseable or negative entries fall back to the field default
// instead of being rejected.
func ParseAmount(s string, def int64) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return def
	}
	return n
}
