package coerce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ecomcli/pkg/contracts/domain"
)

func TestToInt(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      int64
		defaulted bool
	}{
		{name: "plain integer", raw: "42", want: 42, defaulted: false},
		{name: "whitespace trimmed", raw: "  7 ", want: 7, defaulted: false},
		{name: "integral decimal", raw: "3.0", want: 3, defaulted: false},
		{name: "empty falls back", raw: "", want: -1, defaulted: true},
		{name: "garbage falls back", raw: "abc", want: -1, defaulted: true},
		{name: "fractional falls back", raw: "3.5", want: -1, defaulted: true},
		{name: "negative preserved", raw: "-4", want: -4, defaulted: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := ToInt(tt.raw, domain.SentinelInt)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.defaulted, defaulted)
		})
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name              string
		raw               string
		rejectNonPositive bool
		want              float64
		defaulted         bool
	}{
		{name: "plain decimal", raw: "19.90", want: 19.90},
		{name: "integer accepted", raw: "10", want: 10},
		{name: "empty falls back", raw: "", want: -1, defaulted: true},
		{name: "garbage falls back", raw: "free", want: -1, defaulted: true},
		{name: "negative price collapses to sentinel", raw: "-50.00", rejectNonPositive: true, want: -1, defaulted: true},
		{name: "zero price collapses to sentinel", raw: "0", rejectNonPositive: true, want: -1, defaulted: true},
		{name: "negative allowed when not rejecting", raw: "-12.5", want: -12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := ToDecimal(tt.raw, domain.SentinelDecimal, tt.rejectNonPositive)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.defaulted, defaulted)
		})
	}
}

func TestToText(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		upper     bool
		want      string
		defaulted bool
	}{
		{name: "plain text", raw: "sao paulo", want: "sao paulo"},
		{name: "upper-cased", raw: "sao paulo", upper: true, want: "SAO PAULO"},
		{name: "trimmed", raw: "  rio  ", want: "rio"},
		{name: "empty falls back", raw: "", want: "N/A", defaulted: true},
		{name: "whitespace only falls back", raw: "   ", want: "N/A", defaulted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := ToText(tt.raw, domain.SentinelText, tt.upper)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.defaulted, defaulted)
		})
	}
}

func TestToTime(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      time.Time
		defaulted bool
	}{
		{
			name: "space separated timestamp",
			raw:  "2018-03-05 14:30:00",
			want: time.Date(2018, 3, 5, 14, 30, 0, 0, time.UTC),
		},
		{
			name: "date only",
			raw:  "2018-03-05",
			want: time.Date(2018, 3, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "slash separated",
			raw:  "2018/03/05 14:30:00",
			want: time.Date(2018, 3, 5, 14, 30, 0, 0, time.UTC),
		},
		{name: "empty falls back to sentinel date", raw: "", want: domain.SentinelDate, defaulted: true},
		{name: "garbage falls back to sentinel date", raw: "not-a-date", want: domain.SentinelDate, defaulted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defaulted := ToTime(tt.raw, domain.SentinelDate)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
			assert.Equal(t, tt.defaulted, defaulted)
		})
	}
}

func TestToTimeOptional(t *testing.T) {
	t.Run("present timestamp", func(t *testing.T) {
		got := ToTimeOptional("2018-03-05 14:30:00")
		assert.NotNil(t, got)
		assert.True(t, got.Equal(time.Date(2018, 3, 5, 14, 30, 0, 0, time.UTC)))
	})

	t.Run("missing stays nil not sentinel", func(t *testing.T) {
		assert.Nil(t, ToTimeOptional(""))
	})

	t.Run("unparseable stays nil", func(t *testing.T) {
		assert.Nil(t, ToTimeOptional("soon"))
	})
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, int64(-1), Defaults.Int)
	assert.Equal(t, float64(-1), Defaults.Decimal)
	assert.Equal(t, "N/A", Defaults.Text)
	assert.Equal(t, time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC), Defaults.Date)
}
