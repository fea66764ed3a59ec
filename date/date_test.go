package date

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	testCases := []struct {
		name    string
		in      string
		want    Date
		wantErr bool
	}{
		{name: "canonical", in: "2021-01-31", want: New(2021, time.January, 31)},
		{name: "permissive single digits", in: "2021-1-3", want: New(2021, time.January, 3)},
		{name: "garbage", in: "not-a-date", wantErr: true},
		{name: "empty", in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected an error, got %v", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestBeforeAfter(t *testing.T) {
	a := MustParse("2021-01-01")
	b := MustParse("2021-12-31")
	if !a.Before(b) || b.Before(a) {
		t.Errorf("expected %v before %v", a, b)
	}
	if !b.After(a) || a.After(b) {
		t.Errorf("expected %v after %v", b, a)
	}
}

func TestEndOfDay(t *testing.T) {
	d := MustParse("2021-06-15")
	end := d.EndOfDay()
	if !end.After(d.Time()) {
		t.Fatalf("EndOfDay %v is not after midnight %v", end, d.Time())
	}
	if end.Day() != 15 {
		t.Errorf("EndOfDay leaked into the next day: %v", end)
	}
}
