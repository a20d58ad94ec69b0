package models

import (
	"encoding/json"
	"strconv"
)

type PropertyType string

const (
	PropertyApartment  PropertyType = "Apartment"
	PropertyHouse      PropertyType = "House"
	PropertyCommercial PropertyType = "Commercial"
)

type ListingStatus string

const (
	StatusForSale ListingStatus = "For Sale"
	StatusForRent ListingStatus = "For Rent"
)

// ImageList is the canonical form of a listing's images. The backend returns
// the field either as a JSON array of URLs or as a string containing the
// JSON-encoded array; decoding resolves both to an ordered slice. Anything
// malformed decodes to an empty list rather than failing the whole listing.
type ImageList []string

func (il *ImageList) UnmarshalJSON(data []byte) error {
	var urls []string
	if err := json.Unmarshal(data, &urls); err == nil {
		*il = urls
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*il = NormalizeImages(raw)
		return nil
	}

	*il = ImageList{}
	return nil
}

// NormalizeImages parses a JSON-encoded image array out of its string form.
// Invalid JSON or a non-array value yields an empty list.
func NormalizeImages(raw string) ImageList {
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return ImageList{}
	}
	return urls
}

type Listing struct {
	ID           string        `json:"id,omitempty"`
	Title        string        `json:"title"`
	Description  string        `json:"description,omitempty"`
	Address      string        `json:"location_address"`
	Price        float64       `json:"price"`
	PropertyType PropertyType  `json:"property_type"`
	Status       ListingStatus `json:"status"`
	Images       ImageList     `json:"images,omitempty"`
}

// PriceString renders the price the way it is searched and sent over the
// wire: a plain decimal string with no exponent and no trailing zeros.
func (l Listing) PriceString() string {
	return strconv.FormatFloat(l.Price, 'f', -1, 64)
}

// ListingsResponse is the payload of GET /api/listings.
type ListingsResponse struct {
	Listings []Listing `json:"listings"`
}

// MessageResponse is the payload of delete and logout responses.
type MessageResponse struct {
	Message string `json:"message"`
}
