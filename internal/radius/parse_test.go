package radius

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttribute(t *testing.T) {
	testCases := []struct {
		in      string
		want    Attribute
		wantErr bool
	}{
		{in: "Framed-IP-Address=10.0.0.1", want: Attribute{Name: "Framed-IP-Address", Operator: OpAssign, Value: "10.0.0.1"}},
		{in: "Session-Timeout:=3600", want: Attribute{Name: "Session-Timeout", Operator: OpSet, Value: "3600"}},
		{in: "NAS-IP-Address==10.1.1.1", want: Attribute{Name: "NAS-IP-Address", Operator: OpEqual, Value: "10.1.1.1"}},
		{in: "Reply-Message += hello world", want: Attribute{Name: "Reply-Message", Operator: OpAdd, Value: "hello world"}},
		{in: "Class-=x", want: Attribute{Name: "Class", Operator: OpRemove, Value: "x"}},
		{in: "Filter-Id^=std", want: Attribute{Name: "Filter-Id", Operator: OpPrepend, Value: "std"}},
		{in: "Callback-Id=a=b", want: Attribute{Name: "Callback-Id", Operator: OpAssign, Value: "a=b"}},
		{in: "no-operator", wantErr: true},
		{in: "=value", wantErr: true},
		{in: "Name:=", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseAttribute(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
