package transform

import (
	"fmt"
	"strconv"
	"time"
)

// UnknownDateOfBirth is the sentinel used when no date of birth can be derived.
const UnknownDateOfBirth = "1990-01-01"

// centuryPivot splits two-digit years: YY <= 30 is 20YY, otherwise 19YY.
const centuryPivot = 30

// DateOfBirthFromID derives YYYY-MM-DD from the first six digits of a 13-digit
// national ID number. ok is false when the ID is not 13 digits or the digits
// do not form a real calendar date.
func DateOfBirthFromID(idNumber string) (dob string, ok bool) {
	if len(idNumber) != 13 {
		return "", false
	}
	for _, r := range idNumber {
		if r < '0' || r > '9' {
			return "", false
		}
	}

	yy, _ := strconv.Atoi(idNumber[0:2])
	mm, _ := strconv.Atoi(idNumber[2:4])
	dd, _ := strconv.Atoi(idNumber[4:6])

	year := 1900 + yy
	if yy <= centuryPivot {
		year = 2000 + yy
	}

	if mm < 1 || mm > 12 || dd < 1 || dd > 31 {
		return "", false
	}
	date := time.Date(year, time.Month(mm), dd, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != mm || date.Day() != dd {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, mm, dd), true
}

// DeriveDateOfBirth is DateOfBirthFromID with the sentinel fallback.
func DeriveDateOfBirth(idNumber string) string {
	if dob, ok := DateOfBirthFromID(idNumber); ok {
		return dob
	}
	return UnknownDateOfBirth
}
