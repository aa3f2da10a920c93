package printpac

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"print-pricing/internal/enumerator"
)

// NullInt decodes the vendor's loosely typed integers: numbers, quoted
// numbers with optional thousands separators, null, "null" and "".
type NullInt struct {
	Value int64
	Valid bool
}

func Int(v int64) NullInt { return NullInt{Value: v, Valid: true} }

func (n *NullInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = NullInt{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("price value %s: %w", s, err)
		}
		s = strings.ReplaceAll(strings.TrimSpace(unquoted), ",", "")
		if s == "" || s == "null" {
			*n = NullInt{}
			return nil
		}
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = NullInt{Value: v, Valid: true}
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("price value %s: %w", s, err)
	}
	*n = NullInt{Value: int64(math.Round(f)), Valid: true}
	return nil
}

func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(n.Value, 10)), nil
}

// Code decodes an opaque id sent either as a string or a number.
type Code string

func (c *Code) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Code(s)
		return nil
	}
	*c = Code(string(b))
	return nil
}

// RawPriceRecord is one (quantity, lead time) cell of a price table, tagged
// with the descriptor that produced it.
type RawPriceRecord struct {
	SID       Code    `json:"s_id"`
	TID       Code    `json:"t_id"`
	IrokazuID Code    `json:"irokazu_id"`
	Price     NullInt `json:"price"`
	Price2    NullInt `json:"price2"`
	Tax       NullInt `json:"tax"`
	Tax2      NullInt `json:"tax2"`

	Unit       int64                       `json:"-"`
	Day        int64                       `json:"-"`
	Descriptor enumerator.OptionDescriptor `json:"-"`
}
