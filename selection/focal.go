package selection

import currency "github.com/malusev998/currency-board"

const DefaultAmount = "100"

// Focal is the currency the user is typing an amount in. The amount is kept
// as entered; parsing happens at conversion time.
type Focal struct {
	Currency currency.Code `json:"currency"`
	Amount   string        `json:"amount"`
}

func NewFocal(set *Set, code currency.Code, amount string) Focal {
	f := Focal{Currency: code, Amount: amount}
	f.Reconcile(set)

	return f
}

// Reconcile moves the focus to the base when the focal currency is no
// longer selected. It reports whether the focus moved.
func (f *Focal) Reconcile(set *Set) bool {
	if set.Contains(f.Currency) {
		return false
	}

	f.Currency = set.Base()

	return true
}

// Focus makes code the focal currency if it is selected.
func (f *Focal) Focus(set *Set, code currency.Code) bool {
	if !set.Contains(code) {
		return false
	}

	f.Currency = code

	return true
}
