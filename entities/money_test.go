package entities_test

import (
	"testing"

	"github.com/facenordgraphisme/test-mon-coach-sub000/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Expected entities.Money
	}{
		{Name: "integer", Input: "45", Expected: 4500},
		{Name: "decimals", Input: "45.50", Expected: 4550},
		{Name: "one_decimal", Input: "0.5", Expected: 50},
		{Name: "trailing_zeros", Input: "12.3400", Expected: 1234},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			m, err := entities.ParseMoney(tc.Input)
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, m)
		})
	}
}

func TestParseMoney_invalid(t *testing.T) {
	for _, input := range []string{"abc", "-1", "1.005"} {
		_, err := entities.ParseMoney(input)
		assert.ErrorIs(t, err, entities.ErrValidation, input)
	}
}

func TestMoney_Discounted(t *testing.T) {
	assert.Equal(t, entities.Money(4050), entities.Money(4500).Discounted(10))
	// 3333 * 0.85 = 2833.05
	assert.Equal(t, entities.Money(2833), entities.Money(3333).Discounted(15))
	// 4999 * 0.5 = 2499.5, half rounds up
	assert.Equal(t, entities.Money(2500), entities.Money(4999).Discounted(50))
	assert.Equal(t, entities.Money(4500), entities.Money(4500).Discounted(0))
	assert.Equal(t, entities.Money(0), entities.Money(4500).Discounted(100))
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "45.50", entities.Money(4550).String())
	assert.Equal(t, "0.05", entities.Money(5).String())
}
