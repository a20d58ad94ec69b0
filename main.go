package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"realtydesk/api"
	"realtydesk/config"
	"realtydesk/models"
	"realtydesk/screens"
	"realtydesk/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}
	cfg := config.FromEnv()

	cmd := flag.String("cmd", "listings", "Command: login|register|logout|whoami|listings|show|add|update|delete")
	username := flag.String("username", "", "Username / email")
	password := flag.String("password", "", "Password")
	fullName := flag.String("full-name", "", "Full name (register)")
	remember := flag.Bool("remember", false, "Persist the session to the durable store")

	query := flag.String("query", "", "Search text")
	minPrice := flag.String("min-price", "", "Minimum price filter")
	maxPrice := flag.String("max-price", "", "Maximum price filter")
	propType := flag.String("type", "", "Property type filter: Apartment|House|Commercial")
	status := flag.String("status", "", "Status filter: 'For Sale'|'For Rent'")
	page := flag.Int("page", 0, "Zero-based page index")
	pageSize := flag.Int("page-size", cfg.PageSize, "Rows per page")

	id := flag.String("id", "", "Listing id (show/update/delete)")
	title := flag.String("title", "", "Listing title")
	description := flag.String("description", "", "Listing description")
	address := flag.String("address", "", "Listing address")
	price := flag.Float64("price", 0, "Listing price")
	listingType := flag.String("listing-type", string(models.PropertyApartment), "Property type")
	listingStatus := flag.String("listing-status", string(models.StatusForSale), "Listing status")
	image := flag.String("image", "", "Path of an image file to attach")
	flag.Parse()

	store := newStore(cfg, *cmd, *remember)
	client := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout, store)
	ctx := context.Background()

	var err error
	switch *cmd {
	case "login":
		err = runLogin(ctx, client, store, *username, *password, *remember)
	case "register":
		err = runRegister(ctx, client, store, *username, *password, *fullName)
	case "logout":
		err = screens.Logout(ctx, client, store)
	case "whoami":
		err = runWhoami(store)
	case "listings":
		err = runListings(ctx, client, store, listingArgs{
			query: *query, minPrice: *minPrice, maxPrice: *maxPrice,
			propType: *propType, status: *status, page: *page, pageSize: *pageSize,
		})
	case "show":
		err = runShow(ctx, client, store, *id)
	case "add", "update":
		l := models.Listing{
			ID:           *id,
			Title:        *title,
			Description:  *description,
			Address:      *address,
			Price:        *price,
			PropertyType: models.PropertyType(*listingType),
			Status:       models.ListingStatus(*listingStatus),
		}
		if *cmd == "add" {
			l.ID = ""
		}
		err = runSave(ctx, client, store, l, *image, *pageSize)
	case "delete":
		err = runDelete(ctx, client, store, *id, *pageSize)
	default:
		err = fmt.Errorf("unknown command %q", *cmd)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newStore picks the session backend. A login without -remember keeps the
// session in memory only, so it lasts for this invocation and no longer.
func newStore(cfg config.Config, cmd string, remember bool) session.Store {
	if cmd == "login" && !remember {
		return session.NewMemoryStore()
	}
	switch cfg.SessionBackend {
	case "redis":
		return session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 0)
	case "memory":
		return session.NewMemoryStore()
	default:
		return session.NewFileStore(cfg.SessionFile, cfg.SessionPassphrase)
	}
}

func runLogin(ctx context.Context, client *api.Client, store session.Store, username, password string, remember bool) error {
	screen := screens.NewLogin(client, store)
	defer screen.Close()
	user, err := screen.Submit(ctx, username, password, remember)
	if err != nil {
		return err
	}
	fmt.Printf("Signed in as %s (%s)\n", user.FullName, user.Role)
	return nil
}

func runRegister(ctx context.Context, client *api.Client, store session.Store, username, password, fullName string) error {
	screen := screens.NewRegister(client, store)
	defer screen.Close()
	user, err := screen.Submit(ctx, username, password, fullName)
	if err != nil {
		return err
	}
	fmt.Printf("Account created for %s (%s)\n", user.FullName, user.Email)
	return nil
}

func runWhoami(store session.Store) error {
	user := screens.Identity(store)
	if user == nil {
		fmt.Println("Not signed in.")
		return nil
	}
	fmt.Printf("%s <%s> role=%s\n", user.FullName, user.Email, user.Role)
	return nil
}

type listingArgs struct {
	query, minPrice, maxPrice, propType, status string
	page, pageSize                              int
}

func runListings(ctx context.Context, client *api.Client, store session.Store, args listingArgs) error {
	dash := screens.NewDashboard(client, store, args.pageSize)
	defer dash.Close()
	if err := dash.Refresh(ctx); err != nil {
		return err
	}

	dash.SetQuery(args.query)
	min, err := parseBound(args.minPrice)
	if err != nil {
		return err
	}
	max, err := parseBound(args.maxPrice)
	if err != nil {
		return err
	}
	dash.SetPriceBounds(min, max)
	dash.SetPropertyType(models.PropertyType(args.propType))
	dash.SetStatus(models.ListingStatus(args.status))
	dash.SetPage(args.page)

	rows, total := dash.Rows()
	printTable(rows)
	fmt.Printf("Page %d (%d rows of %d matches)\n", args.page, len(rows), total)
	return nil
}

func runShow(ctx context.Context, client *api.Client, store session.Store, id string) error {
	if id == "" {
		return fmt.Errorf("-id is required")
	}
	dash := screens.NewDashboard(client, store, 1)
	defer dash.Close()
	if err := dash.Refresh(ctx); err != nil {
		return err
	}
	l, ok := dash.Get(id)
	if !ok {
		return fmt.Errorf("listing %s not found", id)
	}
	fmt.Printf("Title:        %s\n", l.Title)
	fmt.Printf("Description:  %s\n", l.Description)
	fmt.Printf("Address:      %s\n", l.Address)
	fmt.Printf("Price:        %s\n", l.PriceString())
	fmt.Printf("Type:         %s\n", l.PropertyType)
	fmt.Printf("Status:       %s\n", l.Status)
	for _, img := range l.Images {
		fmt.Printf("Image:        %s\n", img)
	}
	return nil
}

func runSave(ctx context.Context, client *api.Client, store session.Store, l models.Listing, imagePath string, pageSize int) error {
	dash := screens.NewDashboard(client, store, pageSize)
	defer dash.Close()
	if !dash.CanMutate() {
		return fmt.Errorf("only admins can modify listings")
	}
	if err := dash.Save(ctx, l, imagePath); err != nil {
		return err
	}
	fmt.Println("Saved.")
	return nil
}

func runDelete(ctx context.Context, client *api.Client, store session.Store, id string, pageSize int) error {
	if id == "" {
		return fmt.Errorf("-id is required")
	}
	dash := screens.NewDashboard(client, store, pageSize)
	defer dash.Close()
	if !dash.CanMutate() {
		return fmt.Errorf("only admins can delete listings")
	}
	return dash.Delete(ctx, id, confirmStdin)
}

func confirmStdin(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func parseBound(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid price bound %q", s)
	}
	return &v, nil
}

func printTable(rows []models.Listing) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tADDRESS\tPRICE\tTYPE\tSTATUS")
	if len(rows) == 0 {
		fmt.Fprintln(w, "-\tNo listings found.\t-\t-\t-\t-")
	}
	for _, l := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.ID, l.Title, l.Address, l.PriceString(), l.PropertyType, l.Status)
	}
	w.Flush()
}
