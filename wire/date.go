package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// Date is a point in time that also accepts plain calendar dates (YYYY-MM-DD)
// when decoded. It is always encoded as RFC 3339.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02"}

func ParseDate(val string) (Date, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("date %q must be RFC3339 or YYYY-MM-DD", val)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(time.RFC3339))
}

func (d *Date) UnmarshalJSON(buf []byte) error {
	if string(buf) == "null" {
		*d = Date{}
		return nil
	}
	var val string
	if err := json.Unmarshal(buf, &val); err != nil {
		return err
	}
	if val == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(val)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
