package meta

// The Graph API exposes two id spaces for catalog items: ids Meta assigns at
// creation time, and retailer ids the merchant chooses as idempotency keys.
// They are distinct types so a caller can never pass one where the API expects
// the other.
type (
	// UserID identifies a Meta user account.
	UserID string
	// BusinessID identifies a business owned by a user account.
	BusinessID string
	// CatalogID identifies a product catalog owned by a business.
	CatalogID string
	// ProductID is the Meta-assigned id of a catalog product.
	ProductID string
	// RetailerID is the merchant-chosen idempotency key for a product.
	RetailerID string
	// ProductSetID is the Meta-assigned id of a product set.
	ProductSetID string
)

// Business is a business account returned by the businesses edge.
type Business struct {
	ID   BusinessID `json:"id"`
	Name string     `json:"name"`
}

// Catalog is a product catalog returned by the owned_product_catalogs edge.
type Catalog struct {
	ID   CatalogID `json:"id"`
	Name string    `json:"name"`
}

// Image references a product image by URL.
type Image struct {
	URL string `json:"url"`
}

// Product is a catalog product as this client reshapes it: the vendor url
// field becomes Link and image_url becomes a nested Image reference. Price is
// passed through as the vendor formats it.
type Product struct {
	ID          ProductID  `json:"id"`
	RetailerID  RetailerID `json:"retailerId,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Brand       string     `json:"brand,omitempty"`
	Link        string     `json:"link,omitempty"`
	Price       string     `json:"price,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	Image       *Image     `json:"image,omitempty"`
}

// ProductInput describes a product to create. Price is in major units of the
// given currency; it is converted to integer minor units on the wire by
// multiplying by 100, which assumes a two-decimal currency.
type ProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	Link        string  `json:"link,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
}

// ProductSet is a named sub-collection of catalog products. ProductIDs is
// resolved with a follow-up request per set; Count is the vendor-reported
// product_count.
type ProductSet struct {
	ID         ProductSetID `json:"id"`
	Name       string       `json:"name"`
	Count      int          `json:"count"`
	ProductIDs []ProductID  `json:"productIds"`
}

// ProductSetInput describes a product set to create. Sets start empty; members
// are assigned with UpdateProductSet.
type ProductSetInput struct {
	Name string `json:"name"`
}

// ProductSetUpdate carries the desired state for UpdateProductSet. Only full
// membership replacement is supported, so ProductIDs must be non-nil; an empty
// non-nil slice empties the set.
type ProductSetUpdate struct {
	ProductIDs []ProductID `json:"productIds"`
}

// listEnvelope is the generic Graph API list payload.
type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

// productRecord is the wire shape of a product in list responses.
type productRecord struct {
	ID          ProductID  `json:"id"`
	RetailerID  RetailerID `json:"retailer_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Brand       string     `json:"brand"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url"`
	Price       string     `json:"price"`
	Currency    string     `json:"currency"`
}

// productSetRecord is the wire shape of a product set in list responses.
type productSetRecord struct {
	ID           ProductSetID `json:"id"`
	Name         string       `json:"name"`
	ProductCount int          `json:"product_count"`
}

// idRecord is the wire shape of a membership listing entry.
type idRecord struct {
	ID ProductID `json:"id"`
}
