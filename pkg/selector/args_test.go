package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Params
		wantErr string
	}{
		{name: "empty", raw: "", want: Params{}},
		{name: "single", raw: "count=5", want: Params{"count": "5"}},
		{name: "multiple", raw: "count=5,type=creature", want: Params{"count": "5", "type": "creature"}},
		{name: "duplicate last wins", raw: "c=1,c=3", want: Params{"c": "3"}},
		{name: "split on first equals", raw: "name=a=b", want: Params{"name": "a=b"}},
		{name: "empty value", raw: "name=", want: Params{"name": ""}},
		{name: "value with space", raw: "name=Steve Jobs", want: Params{"name": "Steve Jobs"}},
		{name: "missing equals", raw: "count", wantErr: `"count"`},
		{name: "missing equals later", raw: "c=1,oops", wantErr: `"oops"`},
		{name: "empty name", raw: "=5", wantErr: `"=5"`},
		{name: "trailing comma", raw: "c=1,", wantErr: `""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrMalformedArguments)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Accessors(t *testing.T) {
	p := Params{"c": "3", "r": "2.5", "bad": "x"}

	v, ok := p.Get("count", "c")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = p.Get("missing")
	assert.False(t, ok)

	n, err := p.Int(1, "count", "c")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = p.Int(7, "missing")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	_, err = p.Int(0, "bad")
	var perr *ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "integer", perr.Want)

	f, err := p.Float(0, "r")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, f, 1e-9)

	_, err = p.Float(0, "bad")
	assert.Error(t, err)
}
