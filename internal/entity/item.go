package entity

// Item is a catalog entry used when composing manual bills.
// RateOfGST is the full GST percentage for the item, e.g. 18 for "18%".
type Item struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	Category  string  `json:"category" gorm:"index"`
	ItemName  string  `json:"item_name" gorm:"index"`
	HSNCode   string  `json:"hsn_code"`
	RateOfGST float64 `json:"rate_of_gst"`
}
