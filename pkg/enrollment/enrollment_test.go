package enrollment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/enrollsync/pkg/enrollment"
	"github.com/agentstation/enrollsync/pkg/errors"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  enrollment.Date
		isErr bool
	}{
		{name: "iso", in: "2019-08-26", want: enrollment.NewDate(2019, time.August, 26)},
		{name: "compact", in: "20190826", want: enrollment.NewDate(2019, time.August, 26)},
		{name: "us", in: "08/26/2019", want: enrollment.NewDate(2019, time.August, 26)},
		{name: "empty is null", in: "", want: enrollment.Date{}},
		{name: "spaces are null", in: "  ", want: enrollment.Date{}},
		{name: "garbage", in: "fall 2019", isErr: true},
		{name: "impossible day", in: "2019-02-30", isErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := enrollment.ParseDate(tt.in)
			if tt.isErr {
				require.Error(t, err)
				var pe *errors.ParseError
				assert.ErrorAs(t, err, &pe)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateOrdering(t *testing.T) {
	null := enrollment.Date{}
	a := enrollment.NewDate(2018, time.January, 10)
	b := enrollment.NewDate(2018, time.March, 1)

	assert.True(t, null.Before(a), "null sorts first")
	assert.False(t, a.Before(null))
	assert.False(t, null.Before(null))
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.Equal(t, b, a.Max(b))
	assert.Equal(t, a, null.Max(a))
	assert.Equal(t, 50, b.DaysSince(a))
	assert.Equal(t, -50, a.DaysSince(b))
}

func TestDateFormatting(t *testing.T) {
	d := enrollment.NewDate(2017, time.September, 5)
	assert.Equal(t, "2017-09-05", d.String())
	assert.Equal(t, "Sep 2017", d.Format("Jan 2006"))
	assert.Equal(t, "09/05/17", d.Format("01/02/06"))
	assert.Equal(t, "", enrollment.Date{}.String())
	assert.False(t, enrollment.Date{}.Valid())
	assert.Equal(t, enrollment.Date{}, enrollment.Date{}.AddDays(10))
	assert.Equal(t, enrollment.NewDate(2017, time.September, 15), d.AddDays(10))

	text, err := d.MarshalText()
	require.NoError(t, err)
	var back enrollment.Date
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, d, back)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, enrollment.StatusNone.IsNull())
	assert.True(t, enrollment.Withdrew.Left())
	assert.True(t, enrollment.TransferredOut.Left())
	assert.False(t, enrollment.Attending.Left())
	assert.True(t, enrollment.Matriculating.PreEnrollment())
	assert.True(t, enrollment.DidNotMatriculate.PreEnrollment())
	assert.False(t, enrollment.Graduated.PreEnrollment())
	assert.True(t, enrollment.AssociatesOrCertificate.HasPrefix("A"))
	assert.True(t, enrollment.DegreeNone.IsNull())
}

func TestFieldColumns(t *testing.T) {
	f := enrollment.DefaultFields()
	assert.Len(t, f.Enrollment.Columns(false), 10)
	assert.Equal(t, []string{"Id", "Withdrawal_reason__c", "Withdrawal_code__c"}, f.Enrollment.Columns(true)[10:])
	assert.Equal(t, "Id", f.Enrollment.UpdateColumns()[0])
	assert.Equal(t, []string{"Id", "Needs_NSC_Review__c", "NSC_Review_Reason__c"}, f.Contact.FlagColumns())
}

func TestDirectoryLookup(t *testing.T) {
	d := enrollment.NewDirectory()
	d.Colleges["001A"] = enrollment.Institution{ID: "001A", Name: "State University", Type: "4 yr"}

	inst, ok := d.College("001A")
	require.True(t, ok)
	assert.Equal(t, "State University", inst.Name)

	_, ok = d.College("missing")
	assert.False(t, ok)

	var nilDir *enrollment.Directory
	_, ok = nilDir.College("001A")
	assert.False(t, ok)
}
