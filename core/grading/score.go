package grading

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NotAvailableText is how absent values are rendered.
const NotAvailableText = "N/A"

var (
	// PassMark is the lowest passing average, inclusive.
	PassMark = decimal.NewFromInt(10)

	hundred = decimal.NewFromInt(100)
)

// Score is an average on the 0-20 scale, rounded to 2 decimals, that may be not available.
// The zero Score is not available.
type Score struct {
	value decimal.Decimal
	valid bool
}

// NewScore rounds d to 2 decimals, half away from zero.
func NewScore(d decimal.Decimal) Score {
	return Score{value: d.Round(2), valid: true}
}

func (s Score) Valid() bool {
	return s.valid
}

// Decimal returns the score value and whether it is available.
func (s Score) Decimal() (decimal.Decimal, bool) {
	return s.value, s.valid
}

// Passing reports whether the score is available and at least PassMark.
func (s Score) Passing() bool {
	return s.valid && s.value.GreaterThanOrEqual(PassMark)
}

func (s Score) String() string {
	if !s.valid {
		return NotAvailableText
	}
	return s.value.StringFixed(2)
}

func (s Score) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Score) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == NotAvailableText || str == "null" {
		*s = Score{}
		return nil
	}
	d, err := decimal.NewFromString(str)
	if err != nil {
		return errors.Wrap(err, "invalid score")
	}
	*s = NewScore(d)
	return nil
}

// Percentage is a rate rendered as "NN.NN%", that may be not available.
type Percentage struct {
	value decimal.Decimal
	valid bool
}

// NewPercentage returns part/whole*100 rounded to 2 decimals; not available when whole is zero.
func NewPercentage(part, whole int) Percentage {
	if whole == 0 {
		return Percentage{}
	}
	p := decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole)))
	return Percentage{value: p.Round(2), valid: true}
}

func (p Percentage) Valid() bool {
	return p.valid
}

func (p Percentage) Decimal() (decimal.Decimal, bool) {
	return p.value, p.valid
}

func (p Percentage) String() string {
	if !p.valid {
		return NotAvailableText
	}
	return p.value.StringFixed(2) + "%"
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Percentage) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == NotAvailableText || str == "null" {
		*p = Percentage{}
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSuffix(str, "%"))
	if err != nil {
		return errors.Wrap(err, "invalid percentage")
	}
	*p = Percentage{value: d.Round(2), valid: true}
	return nil
}
