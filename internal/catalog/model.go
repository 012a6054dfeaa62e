package catalog

// Product is a catalog entry as listed by the backend
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Picture      string  `json:"picture"`
	CategoryName string  `json:"categoryName"`
	ShopName     string  `json:"shopName"`
}

// Shop is a storefront as listed by the backend
type Shop struct {
	ID           string  `json:"id"`
	BrandName    string  `json:"brandName"`
	Logo         string  `json:"logo"`
	Description  string  `json:"description"`
	Owner        string  `json:"owner"`
	Location     string  `json:"location"`
	Rating       float64 `json:"rating"`
	TotalReviews int     `json:"totalReviews"`
	Followers    int     `json:"followers"`
	Category     string  `json:"category"`
	IsVerified   bool    `json:"isVerified"`
}

// Page is the backend's paginated list shape
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	NumberOfElements int   `json:"numberOfElements"`
	Empty            bool  `json:"empty"`
}
