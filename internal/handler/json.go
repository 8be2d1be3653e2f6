package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// writeJSON encodes a response body with the given encoder function.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {code, message} error shape shared by all endpoints.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// money emits a decimal as a raw JSON number, preserving its exact value.
func money(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

// optStr decodes a string field that may be JSON null.
func optStr(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// optTime decodes a timestamp that may be an RFC 3339 string, epoch
// milliseconds, or null.
func optTime(d *jx.Decoder) (*time.Time, error) {
	switch d.Next() {
	case jx.Null:
		return nil, d.Null()
	case jx.Number:
		ms, err := d.Int64()
		if err != nil {
			return nil, err
		}
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	default:
		s, err := d.Str()
		if err != nil {
			return nil, err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
}
