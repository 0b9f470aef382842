package selection_test

import (
	"errors"
	"testing"

	"github.com/bxcodec/faker/v3"
	"github.com/stretchr/testify/require"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/selection"
)

func newSet(t *testing.T, codes ...currency.Code) *selection.Set {
	t.Helper()

	set, err := selection.New(selection.DefaultMax, codes...)
	require.NoError(t, err)

	return set
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("Drops duplicates and truncates", func(t *testing.T) {
		asserts := require.New(t)

		set, err := selection.New(3, "CNY", "CNY", "HKD", "USD", "EUR")

		asserts.NoError(err)
		asserts.Equal([]currency.Code{"CNY", "HKD", "USD"}, set.Codes())
		asserts.Equal(3, set.Max())
		asserts.NoError(set.Validate())
	})

	t.Run("Empty selection", func(t *testing.T) {
		asserts := require.New(t)

		set, err := selection.New(3)

		asserts.Nil(set)
		asserts.True(errors.Is(err, selection.ErrEmptySelection))
	})

	t.Run("Non-positive max falls back to default", func(t *testing.T) {
		asserts := require.New(t)

		set, err := selection.New(0, selection.DefaultCodes...)

		asserts.NoError(err)
		asserts.Equal(selection.DefaultMax, set.Max())
	})
}

func TestSet_Add(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	set := newSet(t, "CNY", "HKD", "USD")

	asserts.Equal(selection.None, set.Add("HKD"))
	asserts.Equal(selection.Membership, set.Add("EUR"))
	asserts.Equal(selection.Membership, set.Add("JPY"))
	asserts.Equal(selection.None, set.Add("GBP"))

	asserts.Equal([]currency.Code{"CNY", "HKD", "USD", "EUR", "JPY"}, set.Codes())
	asserts.Equal([]currency.Code{"HKD", "USD", "EUR", "JPY"}, set.Targets())
}

func TestSet_Clone(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	set := newSet(t, "CNY", "HKD")
	clone := set.Clone()

	asserts.Equal(selection.Membership, clone.Add("USD"))
	asserts.Equal([]currency.Code{"CNY", "HKD"}, set.Codes())
	asserts.Equal([]currency.Code{"CNY", "HKD", "USD"}, clone.Codes())
	asserts.Equal(set.Max(), clone.Max())
	asserts.NoError(clone.Validate())
}

func TestSet_Remove(t *testing.T) {
	t.Parallel()

	t.Run("Keeps order", func(t *testing.T) {
		asserts := require.New(t)
		set := newSet(t, "CNY", "HKD", "USD", "EUR")

		change := set.Remove("HKD")

		asserts.Equal(selection.Membership, change)
		asserts.True(change.NeedsRefresh())
		asserts.Equal([]currency.Code{"CNY", "USD", "EUR"}, set.Codes())
	})

	t.Run("Removing base changes base", func(t *testing.T) {
		asserts := require.New(t)
		set := newSet(t, "CNY", "HKD", "USD")

		change := set.Remove("CNY")

		asserts.True(change.Has(selection.Base))
		asserts.True(change.Has(selection.Membership))
		asserts.Equal(currency.Code("HKD"), set.Base())
	})

	t.Run("Last currency stays", func(t *testing.T) {
		asserts := require.New(t)
		set := newSet(t, "CNY")

		asserts.Equal(selection.None, set.Remove("CNY"))
		asserts.Equal(selection.None, set.Remove("USD"))
		asserts.Equal(1, set.Len())
	})
}

func TestSet_Reorder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		expected []currency.Code
		change   selection.Change
	}{
		{"Move forward", 1, 3, []currency.Code{"CNY", "USD", "EUR", "HKD"}, selection.Order},
		{"Move backward", 3, 1, []currency.Code{"CNY", "EUR", "HKD", "USD"}, selection.Order},
		{"New base", 2, 0, []currency.Code{"USD", "CNY", "HKD", "EUR"}, selection.Order | selection.Base},
		{"Base moved away", 0, 2, []currency.Code{"HKD", "USD", "CNY", "EUR"}, selection.Order | selection.Base},
		{"Same position", 2, 2, []currency.Code{"CNY", "HKD", "USD", "EUR"}, selection.None},
		{"Out of bounds", 1, 4, []currency.Code{"CNY", "HKD", "USD", "EUR"}, selection.None},
		{"Negative", -1, 0, []currency.Code{"CNY", "HKD", "USD", "EUR"}, selection.None},
	}

	for _, test := range tests {
		test := test

		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			asserts := require.New(t)
			set := newSet(t, "CNY", "HKD", "USD", "EUR")

			asserts.Equal(test.change, set.Reorder(test.from, test.to))
			asserts.Equal(test.expected, set.Codes())
			asserts.ElementsMatch([]currency.Code{"CNY", "HKD", "USD", "EUR"}, set.Codes())
		})
	}
}

func TestSet_RandomMutationsKeepInvariants(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	set := newSet(t, selection.DefaultCodes...)

	for i := 0; i < 200; i++ {
		code := currency.Code(faker.Currency())

		switch i % 3 {
		case 0:
			set.Add(code)
		case 1:
			set.Remove(set.Codes()[i%set.Len()])
		default:
			set.Reorder(i%set.Len(), (i/3)%set.Len())
		}

		asserts.NoError(set.Validate())
		asserts.GreaterOrEqual(set.Len(), 1)
		asserts.LessOrEqual(set.Len(), set.Max())
	}
}

func TestFocal(t *testing.T) {
	t.Parallel()

	t.Run("Reset to base when dropped", func(t *testing.T) {
		asserts := require.New(t)
		set := newSet(t, "CNY", "HKD", "USD")
		focal := selection.NewFocal(set, "HKD", selection.DefaultAmount)

		set.Remove("HKD")

		asserts.True(focal.Reconcile(set))
		asserts.Equal(currency.Code("CNY"), focal.Currency)
		asserts.Equal("100", focal.Amount)
	})

	t.Run("Unknown initial focal", func(t *testing.T) {
		asserts := require.New(t)
		set := newSet(t, "CNY", "HKD")

		focal := selection.NewFocal(set, "EUR", "5")

		asserts.Equal(currency.Code("CNY"), focal.Currency)
	})

	t.Run("Focus only on members", func(t *testing.T) {
		asserts := require.New(t)
		set := newSet(t, "CNY", "HKD")
		focal := selection.NewFocal(set, "CNY", "5")

		asserts.False(focal.Focus(set, "USD"))
		asserts.True(focal.Focus(set, "HKD"))
		asserts.Equal(currency.Code("HKD"), focal.Currency)
		asserts.False(focal.Reconcile(set))
	})
}
