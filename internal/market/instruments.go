package market

import "github.com/arzlive/arzlive/internal/model"

// Well-known catalog ids.
const (
	IDUSD       = "usd"
	IDEUR       = "eur"
	IDGBP       = "gbp"
	IDGold18    = "gold_18"
	IDCoinEmami = "coin_emami"
	IDBTC       = "btc"
	IDUSDT      = "usdt"
)

// DefaultInstruments returns the reference catalog: three currencies, two
// gold instruments and bitcoin, plus USDT as a rate-only reference.
// Seed prices are in Toman.
func DefaultInstruments() []model.Instrument {
	fiat := []model.Section{model.SectionCurrency}
	gold := []model.Section{model.SectionGold}
	crypto := []model.Section{model.SectionCrypto}

	return []model.Instrument{
		{
			ID: IDUSD, NameFa: "دلار آمریکا", NameEn: "USD",
			Category: model.CategoryCurrency, Class: model.ClassCurrency, SeedPrice: 70150,
			Symbols:       []string{"usd", "price_dollar_rl"},
			NameFragments: []string{"دلار"},
			Sections:      fiat,
		},
		{
			ID: IDEUR, NameFa: "یورو", NameEn: "EUR",
			Category: model.CategoryCurrency, Class: model.ClassCurrency, SeedPrice: 76400,
			Symbols:       []string{"eur", "price_eur"},
			NameFragments: []string{"یورو"},
			Sections:      fiat,
		},
		{
			ID: IDGBP, NameFa: "پوند انگلیس", NameEn: "GBP",
			Category: model.CategoryCurrency, Class: model.ClassCurrency, SeedPrice: 89200,
			Symbols:       []string{"gbp", "price_gbp"},
			NameFragments: []string{"پوند"},
			Sections:      fiat,
		},
		{
			ID: IDGold18, NameFa: "طلای ۱۸ عیار", NameEn: "GOLD 18K",
			Category: model.CategoryGold, Class: model.ClassGoldGram, SeedPrice: 4_550_000,
			Symbols:       []string{"gram18", "geram18", "ir_gold_18k"},
			NameFragments: []string{"18 عیار"},
			Sections:      gold,
		},
		{
			ID: IDCoinEmami, NameFa: "سکه امامی", NameEn: "Emami Coin",
			Category: model.CategoryGold, Class: model.ClassGoldCoin, SeedPrice: 53_200_000,
			Symbols:       []string{"emami", "sekee", "ir_coin_emami"},
			NameFragments: []string{"امامی"},
			Sections:      gold,
		},
		{
			ID: IDBTC, NameFa: "بیت\u200cکوین", NameEn: "BTC",
			Category: model.CategoryCrypto, Class: model.ClassCrypto, SeedPrice: 6_600_000_000,
			Symbols:       []string{"btc", "bitcoin"},
			NameFragments: []string{"بیت کوین"},
			Sections:      crypto,
		},
		{
			ID: IDUSDT, NameFa: "تتر", NameEn: "USDT",
			Category: model.CategoryCrypto, Class: model.ClassCurrency, SeedPrice: 70150,
			Symbols:       []string{"usdt", "tether"},
			NameFragments: []string{"تتر"},
			Sections:      []model.Section{model.SectionCurrency, model.SectionCrypto},
			Reference:     true,
		},
	}
}
