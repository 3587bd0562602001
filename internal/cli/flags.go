package cli

import (
	"fmt"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/spf13/pflag"
)

// durationValue is a pflag.Value accepting "1h30m", "1h 30m", "45m" or a bare
// number of minutes.
type durationValue time.Duration

var _ pflag.Value = (*durationValue)(nil)

func (d *durationValue) String() string {
	if *d == 0 {
		return ""
	}
	return domain.FormatHuman(int64(time.Duration(*d) / time.Second))
}

func (d *durationValue) Set(s string) error {
	v, err := domain.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = durationValue(v)
	return nil
}

func (d *durationValue) Type() string { return "duration" }

// dateLayout is the accepted --date/--from/--to format.
const dateLayout = "2006-01-02"

// dateValue is a pflag.Value holding a calendar day at local midnight.
type dateValue struct {
	t   time.Time
	loc *time.Location
}

var _ pflag.Value = (*dateValue)(nil)

func newDateValue(loc *time.Location) *dateValue {
	return &dateValue{loc: loc}
}

func (d *dateValue) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d *dateValue) Set(s string) error {
	t, err := time.ParseInLocation(dateLayout, s, d.loc)
	if err != nil {
		return fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	d.t = t
	return nil
}

func (d *dateValue) Type() string { return "date" }

// Time returns the chosen day, or the zero time when unset.
func (d *dateValue) Time() time.Time { return d.t }
