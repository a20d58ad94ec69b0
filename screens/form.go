package screens

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"realtydesk/api"
	"realtydesk/models"
)

// listingForm encodes a listing as the multipart form the backend expects
// for create and update. The price is a decimal string, an absent
// description is an empty field, and at most one image file is attached
// under the "images" field.
func listingForm(l models.Listing, imagePath string) (*api.FormBody, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", l.Title},
		{"description", l.Description},
		{"location_address", l.Address},
		{"price", l.PriceString()},
		{"property_type", string(l.PropertyType)},
		{"status", string(l.Status)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	if imagePath != "" {
		file, err := os.Open(imagePath)
		if err != nil {
			return nil, fmt.Errorf("open image: %w", err)
		}
		defer file.Close()
		part, err := w.CreateFormFile("images", filepath.Base(imagePath))
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &api.FormBody{ContentType: w.FormDataContentType(), Payload: buf.Bytes()}, nil
}
