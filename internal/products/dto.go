package products

// Product mirrors the storefront backend's product document. The backend
// owns these; the client holds a read-only cached copy per session.
type Product struct {
	ID              string   `json:"_id"`
	Name            string   `json:"productName"`
	Description     string   `json:"description"`
	Category        string   `json:"category"`
	Price           float64  `json:"price"`
	DiscountPercent float64  `json:"discount"`
	Rating          float64  `json:"rating"`
	PurchaseCount   int      `json:"purchaseCount"`
	Images          []string `json:"images"`
	SellerID        string   `json:"sellerId,omitempty"`
}

// CreateProductInput is the seller-side create payload, validated
// client-side before submission.
type CreateProductInput struct {
	ImageURL    string  `json:"imageUrl" validate:"required"`
	ProductName string  `json:"productName" validate:"required,min=3,max=120"`
	Description string  `json:"description" validate:"required,min=10"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Discount    float64 `json:"discount" validate:"gte=0,lte=100"`
	SellerID    string  `json:"sellerId" validate:"required"`
}

// RatingInput is the add-rating payload.
type RatingInput struct {
	UserID  string  `json:"userId" validate:"required"`
	Stars   float64 `json:"stars" validate:"required,gte=0,lte=5"`
	Comment string  `json:"comment" validate:"max=500"`
}

// Review is one customer review on a product.
type Review struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Stars    float64 `json:"stars"`
	Comment  string  `json:"comment"`
}

// PurchaseResult is the backend's acknowledgement of a purchase.
type PurchaseResult struct {
	Message string  `json:"message"`
	Product Product `json:"product"`
}

// UploadResult carries the hosted image URL returned by the upload endpoint.
type UploadResult struct {
	ImageURL string `json:"imageUrl"`
}
