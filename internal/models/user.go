package models

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Country   string `json:"country,omitempty"`
}

type Credentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// ProductInfo — результат извлечения данных о товаре по ссылке (AI endpoint).
type ProductInfo struct {
	Title      string `json:"title"`
	ImageURL   string `json:"imageUrl,omitempty"`
	PriceCents int64  `json:"priceCents,omitempty"`
	Currency   string `json:"currency,omitempty"`
	Merchant   string `json:"merchant,omitempty"`
}
