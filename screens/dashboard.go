package screens

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"realtydesk/api"
	"realtydesk/listview"
	"realtydesk/models"
	"realtydesk/session"
)

// Dashboard drives the listings table: fetching the collection, deriving the
// visible page from the current filter state, and running the admin
// mutations. Every mutation refetches the list instead of patching it
// locally, so the table always shows server state.
type Dashboard struct {
	store session.Store

	list *api.Endpoint[models.ListingsResponse]
	save *api.Endpoint[models.Listing]
	del  *api.Endpoint[models.MessageResponse]

	filter listview.Filter
	page   listview.Page
}

func NewDashboard(client *api.Client, store session.Store, pageSize int) *Dashboard {
	return &Dashboard{
		store: store,
		list:  api.NewEndpoint[models.ListingsResponse](client, http.MethodGet, "/api/listings", nil),
		save:  api.NewEndpoint[models.Listing](client, http.MethodPost, "/api/listings/create", nil),
		del:   api.NewEndpoint[models.MessageResponse](client, http.MethodDelete, "/api/listings", nil),
		page:  listview.Page{Size: pageSize},
	}
}

// Refresh fetches the full listings collection.
func (d *Dashboard) Refresh(ctx context.Context) error {
	out := d.list.Execute(ctx)
	if out.Err != "" {
		return errors.New(out.Err)
	}
	return nil
}

// Rows returns the page of listings selected by the current filters together
// with the total match count. Before the first successful fetch it returns
// an empty page.
func (d *Dashboard) Rows() ([]models.Listing, int) {
	out := d.list.Outcome()
	if out.Data == nil {
		return []models.Listing{}, 0
	}
	return listview.Apply(out.Data.Listings, d.filter, d.page)
}

// Get looks up a fetched listing by id, for the read-only detail view.
func (d *Dashboard) Get(id string) (*models.Listing, bool) {
	out := d.list.Outcome()
	if out.Data == nil {
		return nil, false
	}
	for i := range out.Data.Listings {
		if out.Data.Listings[i].ID == id {
			return &out.Data.Listings[i], true
		}
	}
	return nil, false
}

// Filter state setters. Changing any filter moves back to the first page so
// the view never lands on a page past the new match count.

func (d *Dashboard) SetQuery(q string) {
	d.filter.Query = q
	d.page.Index = 0
}

func (d *Dashboard) SetPriceBounds(min, max *float64) {
	d.filter.MinPrice = min
	d.filter.MaxPrice = max
	d.page.Index = 0
}

func (d *Dashboard) SetPropertyType(t models.PropertyType) {
	d.filter.PropertyType = t
	d.page.Index = 0
}

func (d *Dashboard) SetStatus(s models.ListingStatus) {
	d.filter.Status = s
	d.page.Index = 0
}

func (d *Dashboard) SetPage(index int) {
	d.page.Index = index
}

func (d *Dashboard) SetPageSize(size int) {
	d.page.Size = size
	d.page.Index = 0
}

func (d *Dashboard) Page() listview.Page {
	return d.page
}

// CanMutate reports whether the signed-in user may add, edit or delete
// listings.
func (d *Dashboard) CanMutate() bool {
	user, err := session.CurrentUser(d.store)
	return err == nil && user.Role.CanManageListings()
}

// Save creates the listing, or updates it when it already has an id. The
// payload goes up as a multipart form with at most one image file attached;
// on success the list is refetched.
func (d *Dashboard) Save(ctx context.Context, l models.Listing, imagePath string) error {
	errs := FieldErrors{}
	requireField(errs, "title", l.Title, "Title is required")
	requireField(errs, "location_address", l.Address, "Address is required")
	if l.Price < 0 {
		errs["price"] = "Price must not be negative"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	form, err := listingForm(l, imagePath)
	if err != nil {
		return err
	}

	ov := api.Override{Body: form}
	if l.ID != "" {
		ov.URL = "/api/listings/" + l.ID
		ov.Method = http.MethodPut
	}
	out := d.save.ExecuteWith(ctx, ov)
	if out.Err != "" {
		return errors.New(out.Err)
	}
	return d.Refresh(ctx)
}

// Delete removes a listing after the confirm callback approves it, then
// refetches the list. A declined confirmation is not an error.
func (d *Dashboard) Delete(ctx context.Context, id string, confirm func(prompt string) bool) error {
	if confirm == nil || !confirm(fmt.Sprintf("Are you sure you want to delete listing %s?", id)) {
		return nil
	}
	out := d.del.ExecuteWith(ctx, api.Override{URL: "/api/listings/" + id, Method: http.MethodDelete})
	if out.Err != "" {
		return errors.New(out.Err)
	}
	return d.Refresh(ctx)
}

// Close releases the screen's endpoints.
func (d *Dashboard) Close() {
	d.list.Close()
	d.save.Close()
	d.del.Close()
}
