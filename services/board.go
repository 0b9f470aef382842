package services

import (
	"time"

	currency "github.com/malusev998/currency-board"
	"github.com/malusev998/currency-board/catalog"
	"github.com/malusev998/currency-board/rates"
	"github.com/malusev998/currency-board/selection"
)

const ReferenceRatesBanner = "Failed to fetch rates, retry later (using reference rates)"

type (
	Row struct {
		Currency currency.Currency `json:"currency"`
		Value    Display           `json:"value"`
		// Rate is the "1 base = N currency" line.
		Rate  Display `json:"rate"`
		Focal bool    `json:"focal"`
		Base  bool    `json:"base"`
	}

	Board struct {
		Base        currency.Code   `json:"base"`
		Focal       selection.Focal `json:"focal"`
		Rows        []Row           `json:"rows"`
		Banner      string          `json:"banner,omitempty"`
		Loading     bool            `json:"loading"`
		Stale       bool            `json:"stale"`
		Unavailable bool            `json:"unavailable"`
		UpdatedAt   *time.Time      `json:"updatedAt,omitempty"`
		MaxSelected int             `json:"maxSelected"`
	}
)

// Derive computes everything a board shows from its inputs. It does not
// fetch and does not modify any of its arguments.
func Derive(c *catalog.Catalog, set *selection.Set, focal selection.Focal, table *rates.Table, loading bool) Board {
	base := set.Base()
	codes := set.Codes()

	var quoted currency.Rates
	if table != nil && table.Base == base {
		quoted = table.Rates
	}

	board := Board{
		Base:        base,
		Focal:       focal,
		Rows:        make([]Row, 0, len(codes)),
		Loading:     loading,
		MaxSelected: set.Max(),
	}

	for _, code := range codes {
		cur, _ := c.Lookup(code)

		board.Rows = append(board.Rows, Row{
			Currency: cur,
			Value:    Convert(code, focal.Currency, focal.Amount, quoted, base),
			Rate:     ExchangeRate(code, base, quoted),
			Focal:    code == focal.Currency,
			Base:     code == base,
		})
	}

	if quoted != nil {
		board.Stale = table.Stale
		board.Unavailable = table.Unavailable

		if !table.FetchedAt.IsZero() {
			updatedAt := table.FetchedAt
			board.UpdatedAt = &updatedAt
		}
	}

	if len(quoted) == 0 && set.Len() > 1 && !loading {
		board.Banner = ReferenceRatesBanner
	}

	return board
}
