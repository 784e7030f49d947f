package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Value is a ratio result: either a concrete amount or the explicit
// "unavailable" sentinel used when a denominator is zero or absent. The
// sentinel is distinct from a real zero so renderers and tests cannot
// conflate the two. It marshals to the number when available and to JSON
// null otherwise.
type Value struct {
	Amount    float64
	Available bool
}

// Amount wraps a concrete value.
func Amount(v float64) Value {
	return Value{Amount: v, Available: true}
}

// Unavailable is the missing-denominator sentinel.
func Unavailable() Value {
	return Value{}
}

// Ratio divides numerator by denominator scaled to a percentage, yielding
// the unavailable sentinel for a zero denominator and never infinity or NaN.
func Ratio(numerator, denominator float64) Value {
	if denominator == 0 {
		return Unavailable()
	}
	v := numerator / denominator * 100
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Unavailable()
	}
	return Amount(v)
}

// String renders the amount with two decimals, or "N/A" for the sentinel.
func (v Value) String() string {
	if !v.Available {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v.Amount)
}

// MarshalJSON emits the amount as a number, or null when unavailable.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Available {
		return []byte("null"), nil
	}
	return json.Marshal(v.Amount)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*v = Unavailable()
		return nil
	}
	var amount float64
	if err := json.Unmarshal(data, &amount); err != nil {
		return err
	}
	*v = Amount(amount)
	return nil
}

// RatioName identifies one ratio of the fixed set. The strings are the
// display names the dashboard renders, so they stay in Indonesian.
type RatioName string

const (
	RatioKemandirian         RatioName = "Rasio Kemandirian (%)"
	RatioKetergantungan      RatioName = "Rasio Ketergantungan Transfer (%)"
	RatioEfektivitasPAD      RatioName = "Rasio Efektivitas PAD (%)"
	RatioEfisiensiBelanja    RatioName = "Rasio Efisiensi Belanja (%)"
	RatioBelanjaOperasi      RatioName = "Rasio Belanja Operasi (%)"
	RatioBelanjaModal        RatioName = "Rasio Belanja Modal (%)"
	RatioBelanjaPegawai      RatioName = "Rasio Belanja Pegawai terhadap Belanja (%)"
	RatioBelanjaBarangJasa   RatioName = "Rasio Belanja Barang/Jasa terhadap Belanja (%)"
	RatioPertumbuhanPendapat RatioName = "Pertumbuhan Pendapatan (%)"
	RatioPertumbuhanBelanja  RatioName = "Pertumbuhan Belanja (%)"
	RatioPertumbuhanPAD      RatioName = "Pertumbuhan PAD (%)"

	// RatioSILPA is a raw rupiah amount, not a percentage.
	RatioSILPA RatioName = "SILPA (Receipts)"
)

// RatioOrder fixes the display order every consumer iterates in.
var RatioOrder = []RatioName{
	RatioKemandirian,
	RatioKetergantungan,
	RatioEfektivitasPAD,
	RatioEfisiensiBelanja,
	RatioBelanjaOperasi,
	RatioBelanjaModal,
	RatioBelanjaPegawai,
	RatioBelanjaBarangJasa,
	RatioPertumbuhanPendapat,
	RatioPertumbuhanBelanja,
	RatioPertumbuhanPAD,
	RatioSILPA,
}

// RatioSet holds the computed ratio values. It is immutable after
// computation; Get treats absent names as unavailable.
type RatioSet map[RatioName]Value

// Get returns the value for a name, the unavailable sentinel when absent.
func (rs RatioSet) Get(name RatioName) Value {
	if v, ok := rs[name]; ok {
		return v
	}
	return Unavailable()
}

// MarshalJSON walks RatioOrder so JSON output keeps the display order
// instead of Go's sorted map-key order.
func (rs RatioSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, name := range RatioOrder {
		v, ok := rs[name]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(string(name))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Severity classifies an interpretation sentence for renderer badges.
type Severity string

const (
	SeverityBaik      Severity = "baik"
	SeverityCukup     Severity = "cukup"
	SeverityPerhatian Severity = "perhatian"
)

// Insight is one diagnostic sentence produced by the interpretation engine.
type Insight struct {
	Ratio    RatioName `json:"ratio"`
	Severity Severity  `json:"severity"`
	Text     string    `json:"text"`
}
