package dto

import "time"

// StatusBreakdown - итог и разбивка по статусам
type StatusBreakdown struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
}

func (b StatusBreakdown) Count(status string) int64 {
	return b.ByStatus[status]
}

type UserStatsResponse struct {
	Listings       StatusBreakdown `json:"listings"`
	OffersSent     StatusBreakdown `json:"offers_sent"`
	OffersReceived StatusBreakdown `json:"offers_received"`

	// Сводка по всем офферам пользователя (отправленным и полученным)
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Total    int64 `json:"total"`

	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
}

type PlatformStatsResponse struct {
	Users       int64     `json:"users"`
	Listings    int64     `json:"listings"`
	Offers      int64     `json:"offers"`
	News        int64     `json:"news"`
	GeneratedAt time.Time `json:"generated_at"`
}
