package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestDateJSON verifies dates travel through JSON as bare YYYY-MM-DD strings.
func TestDateJSON(t *testing.T) {
	e := Entry{Description: "run", Duration: 30, Date: NewDate(2020, time.January, 15)}

	data, err := json.Marshal(e)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"description":"run","duration":30,"date":"2020-01-15"}`
	if string(data) != want {
		t.Errorf("marshal = %s, want %s", data, want)
	}

	var back Entry
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Date.Equal(e.Date.Time) {
		t.Errorf("round-trip date = %v, want %v", back.Date, e.Date)
	}
}

// TestParseDate verifies strict parsing rejects partial and malformed input.
func TestParseDate(t *testing.T) {
	d, err := ParseDate("2021-03-04")
	if err != nil {
		t.Fatal(err)
	}
	if d.String() != "2021-03-04" {
		t.Errorf("String() = %q, want 2021-03-04", d.String())
	}

	for _, s := range []string{"2021-3-4", "2021", "not-a-date", ""} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", s)
		}
	}
}

// TestNewDateNormalizes verifies out-of-range components roll over the way
// time.Date does.
func TestNewDateNormalizes(t *testing.T) {
	d := NewDate(2020, time.Month(13), 1)
	if d.String() != "2021-01-01" {
		t.Errorf("month 13 = %q, want 2021-01-01", d.String())
	}
	d = NewDate(2020, time.February, 30)
	if d.String() != "2020-03-01" {
		t.Errorf("feb 30 = %q, want 2020-03-01", d.String())
	}
}

// TestDateOf ignores time of day and zone.
func TestDateOf(t *testing.T) {
	loc := time.FixedZone("east", 5*3600)
	d := DateOf(time.Date(2020, time.June, 2, 1, 30, 0, 0, loc))
	if d.String() != "2020-06-01" {
		t.Errorf("DateOf = %q, want 2020-06-01 (UTC day)", d.String())
	}
}
