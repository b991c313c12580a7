package handlers

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	ProfileHandler      *ProfileHandler
	ListingHandler      *ListingHandler
	OfferHandler        *OfferHandler
	ChatHandler         *ChatHandler
	NewsHandler         *NewsHandler
	AdHandler           *AdHandler
	BalanceHandler      *BalanceHandler
	NotificationHandler *NotificationHandler
	EmailHandler        *EmailHandler
	FileHandler         *FileHandler
}
