package newsapi

import "time"

// fallbackArticles отдаются, когда внешний API недоступен
var fallbackArticles = map[string][]Article{
	"market": {
		{
			Title:       "Spot road freight rates hold steady across Central Asia corridors",
			Description: "Carriers report stable demand on Almaty-Tashkent and Almaty-Istanbul lanes.",
			URL:         "https://cargomarket.local/news/spot-rates-central-asia",
			Source:      Source{Name: "CargoMarket"},
		},
	},
	"regulation": {
		{
			Title:       "New e-CMR rules simplify cross-border paperwork",
			Description: "Electronic consignment notes are now accepted at more border crossings.",
			URL:         "https://cargomarket.local/news/e-cmr-rules",
			Source:      Source{Name: "CargoMarket"},
		},
	},
	"technology": {
		{
			Title:       "Telematics adoption grows among small fleet operators",
			Description: "Live tracking is becoming a default expectation for shippers.",
			URL:         "https://cargomarket.local/news/telematics-adoption",
			Source:      Source{Name: "CargoMarket"},
		},
	},
	"logistics": {
		{
			Title:       "Multimodal rail-sea routes gain share on Asia-Europe trade",
			Description: "Shippers combine rail and Caspian sea legs to cut transit times.",
			URL:         "https://cargomarket.local/news/multimodal-asia-europe",
			Source:      Source{Name: "CargoMarket"},
		},
		{
			Title:       "Warehouse capacity tightens ahead of peak season",
			Description: "Forwarders advise booking storage and pickups early.",
			URL:         "https://cargomarket.local/news/warehouse-capacity",
			Source:      Source{Name: "CargoMarket"},
		},
	},
	"general": {
		{
			Title:       "How to write a cargo listing that gets offers",
			Description: "Clear routes, weights and pickup windows attract more carriers.",
			URL:         "https://cargomarket.local/news/listing-tips",
			Source:      Source{Name: "CargoMarket"},
		},
	},
}

// Fallback возвращает локальные статьи категории; пустая категория - все
func Fallback(category string, now time.Time) []Article {
	var out []Article
	if category == "" {
		for _, c := range []string{"market", "regulation", "technology", "logistics", "general"} {
			out = append(out, fallbackArticles[c]...)
		}
	} else {
		list, ok := fallbackArticles[category]
		if !ok {
			list = fallbackArticles["general"]
		}
		out = append(out, list...)
	}

	for i := range out {
		out[i].PublishedAt = now.Add(-time.Duration(i+1) * time.Hour).UTC().Truncate(time.Hour)
	}
	return out
}
