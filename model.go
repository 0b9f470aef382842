package currency

import (
	"errors"
	"math"
	"strings"
	"time"
)

type (
	Code string

	Currency struct {
		Code   Code   `json:"code" yaml:"code"`
		Name   string `json:"name" yaml:"name"`
		Symbol string `json:"symbol" yaml:"symbol"`
		Flag   string `json:"flag" yaml:"flag"`
	}

	// Rates maps a target currency to the amount of it one unit of the base buys.
	Rates map[Code]float64

	Snapshot struct {
		Base      Code      `json:"base"`
		Rates     Rates     `json:"rates"`
		Provider  Provider  `json:"provider"`
		FetchedAt time.Time `json:"fetchedAt"`
	}

	SnapshotWithID struct {
		Snapshot
		ID interface{}
	}
)

const (
	minCodeLength = 3
	maxCodeLength = 8
)

var (
	ErrInvalidCode       = errors.New("invalid currency code")
	ErrMissingCredential = errors.New("provider credential is not configured")
	ErrNoRates           = errors.New("no rate could be fetched")
)

// Normalize trims and upper-cases the code, checking only its length.
func Normalize(str string) (Code, error) {
	code := strings.ToUpper(strings.TrimSpace(str))

	if len(code) < minCodeLength || len(code) > maxCodeLength {
		return "", ErrInvalidCode
	}

	return Code(code), nil
}

func ParseCodes(str string) ([]Code, error) {
	parts := strings.Split(str, ",")
	codes := make([]Code, 0, len(parts))

	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}

		code, err := Normalize(part)
		if err != nil {
			return nil, err
		}

		codes = append(codes, code)
	}

	return codes, nil
}

func JoinCodes(codes []Code) string {
	var builder strings.Builder

	for _, c := range codes {
		builder.WriteString(string(c))
		builder.WriteRune(',')
	}

	return strings.TrimRight(builder.String(), ",")
}

func (c Code) String() string {
	return string(c)
}

// Valid reports whether the rate can be used for conversion.
func Valid(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

// Set stores the rate only if it is usable; absence means unknown.
func (r Rates) Set(code Code, rate float64) {
	if Valid(rate) {
		r[code] = rate
	}
}

func (r Rates) Get(code Code) (float64, bool) {
	rate, ok := r[code]
	return rate, ok && Valid(rate)
}

func (r Rates) Clone() Rates {
	cloned := make(Rates, len(r))

	for code, rate := range r {
		cloned.Set(code, rate)
	}

	return cloned
}
