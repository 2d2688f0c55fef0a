package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    Price
		wantErr bool
	}{
		{in: "50", want: 5000},
		{in: "50.00", want: 5000},
		{in: "120.01", want: 12001},
		{in: "49.9", want: 4990},
		{in: " 7.5 ", want: 750},
		{in: ".99", want: 99},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "1.234", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1,50", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPriceString(t *testing.T) {
	assert.Equal(t, "120.01", Price(12001).String())
	assert.Equal(t, "0.05", Price(5).String())
	assert.Equal(t, "50.00", Price(5000).String())
}

func TestPriceJSON(t *testing.T) {
	data, err := json.Marshal(Product{Name: "Oaxaca", Price: 12001})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":120.01`)

	var p Product
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Manchego","price":"85.5"}`), &p))
	assert.Equal(t, Price(8550), p.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"Manchego","price":1.2e2}`), &p))
	assert.Equal(t, Price(12000), p.Price)

	assert.Error(t, json.Unmarshal([]byte(`{"price":-3}`), &p))
}

func TestProductValidate(t *testing.T) {
	assert.ErrorIs(t, (&Product{Name: " "}).Validate(), ErrInvalidName)
	assert.ErrorIs(t, (&Product{Name: "Queso", Price: -1}).Validate(), ErrInvalidPrice)
	assert.NoError(t, (&Product{Name: "Queso"}).Validate())
}
