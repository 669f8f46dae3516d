package service

import (
	"math"
	"strings"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	maxNameLength = 200
)

func cleanName(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", invalidf("%s is required", field)
	}
	if len([]rune(v)) > maxNameLength {
		return "", invalidf("%s is longer than %d characters", field, maxNameLength)
	}
	return v, nil
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidf("%s must be a number", field)
	}
	if v < 0 {
		return invalidf("%s must not be negative", field)
	}
	return nil
}

func checkOptionalAmount(field string, v *float64) error {
	if v == nil {
		return nil
	}
	return checkAmount(field, *v)
}

func checkPercent(field string, v float64) error {
	if err := checkAmount(field, v); err != nil {
		return err
	}
	if v > 100 {
		return invalidf("%s must be between 0 and 100", field)
	}
	return nil
}

// checkDates accepts empty dates; set dates must be YYYY-MM-DD and ordered.
func checkDates(start, end string) error {
	var startAt, endAt time.Time
	var err error
	if start != "" {
		if startAt, err = time.Parse(dateLayout, start); err != nil {
			return invalidf("startDate %q is not a YYYY-MM-DD date", start)
		}
	}
	if end != "" {
		if endAt, err = time.Parse(dateLayout, end); err != nil {
			return invalidf("endDate %q is not a YYYY-MM-DD date", end)
		}
	}
	if start != "" && end != "" && endAt.Before(startAt) {
		return invalidf("endDate %s is before startDate %s", end, start)
	}
	return nil
}

func checkID(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalidf("%s is required", field)
	}
	return nil
}
