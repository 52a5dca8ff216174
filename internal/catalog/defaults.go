package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/nadzzz/mandirate/internal/lang"
)

// DefaultEntries is the built-in commodity table. Prices are rupees per kg.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Key:       Potato,
			Aliases:   []string{"aloo", "potato", "potatoes", "आलू"},
			UnitPrice: decimal.NewFromInt(25),
			Unit:      Kilogram,
			Names:     map[lang.Code]string{lang.English: "potato", lang.Hindi: "आलू"},
		},
		{
			Key:       Onion,
			Aliases:   []string{"pyaz", "pyaaz", "kanda", "onion", "onions", "प्याज", "प्याज़"},
			UnitPrice: decimal.NewFromInt(20),
			Unit:      Kilogram,
			Names:     map[lang.Code]string{lang.English: "onion", lang.Hindi: "प्याज"},
		},
		{
			Key:       Tomato,
			Aliases:   []string{"tamatar", "tomato", "tomatoes", "टमाटर"},
			UnitPrice: decimal.NewFromInt(32),
			Unit:      Kilogram,
			Names:     map[lang.Code]string{lang.English: "tomato", lang.Hindi: "टमाटर"},
		},
		{
			Key:       Rice,
			Aliases:   []string{"chawal", "chaawal", "basmati", "rice", "चावल"},
			UnitPrice: decimal.NewFromInt(48),
			Unit:      Kilogram,
			Names:     map[lang.Code]string{lang.English: "rice", lang.Hindi: "चावल"},
		},
		{
			Key:       Dal,
			Aliases:   []string{"daal", "dal", "lentil", "lentils", "दाल"},
			UnitPrice: decimal.NewFromInt(85),
			Unit:      Kilogram,
			Names:     map[lang.Code]string{lang.English: "dal", lang.Hindi: "दाल"},
		},
	}
}

// MustDefault builds the default catalog, panicking on a defect.
func MustDefault() *Catalog {
	return MustNew(DefaultEntries()...)
}
