package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/trendbasket/storefront/internal/auth"
	"github.com/trendbasket/storefront/internal/cart"
	"github.com/trendbasket/storefront/internal/category"
	"github.com/trendbasket/storefront/internal/checkout"
	"github.com/trendbasket/storefront/internal/products"
	"github.com/trendbasket/storefront/internal/voice"
	"github.com/trendbasket/storefront/pkg/config"
	pkgerrors "github.com/trendbasket/storefront/pkg/errors"
	"github.com/trendbasket/storefront/pkg/logger"
)

// shell is the terminal front-end: a read-eval loop over the storefront
// stores, with the voice pipeline wired to stdin and stdout so spoken
// interactions can be exercised without a microphone.
type shell struct {
	cfg      *config.Config
	logg     *logger.Logger
	products *products.Client
	auth     *auth.Store
	cart     *cart.Store
	category *category.Store
	checkout *checkout.Service
	pipeline *voice.Pipeline

	reader *bufio.Reader
	out    io.Writer

	query   products.Query
	catalog []products.Product

	// utterances queued by "say ..." / "nav ...", consumed by the
	// recognizer before it falls back to prompting.
	pending []string
}

type shellParams struct {
	Config   *config.Config
	Logger   *logger.Logger
	Products *products.Client
	Auth     *auth.Store
	Cart     *cart.Store
	Category *category.Store
	Checkout *checkout.Service
}

func newShell(params shellParams) *shell {
	s := &shell{
		cfg:      params.Config,
		logg:     params.Logger,
		products: params.Products,
		auth:     params.Auth,
		cart:     params.Cart,
		category: params.Category,
		checkout: params.Checkout,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
	// The display list tracks the category store, so voice-applied filters
	// show up without a manual refresh.
	s.category.Subscribe(func(selected string) {
		s.query.Category = selected
		s.printf("category filter is now %q\n", selected)
	})
	return s
}

// recognizer reads one line from the terminal in place of a microphone.
func (s *shell) recognizer() voice.Recognizer {
	return recognizerFunc(func(ctx context.Context) (string, error) {
		if len(s.pending) > 0 {
			utterance := s.pending[0]
			s.pending = s.pending[1:]
			return utterance, nil
		}
		s.printf("(speak)> ")
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(line), nil
	})
}

// synthesizer prints spoken responses in place of a speaker.
func (s *shell) synthesizer() voice.Synthesizer {
	return &consoleSynth{out: s.out}
}

type recognizerFunc func(ctx context.Context) (string, error)

func (f recognizerFunc) Listen(ctx context.Context) (string, error) { return f(ctx) }

type consoleSynth struct {
	out io.Writer
}

func (c *consoleSynth) Speak(ctx context.Context, text string) error {
	_, err := fmt.Fprintf(c.out, "assistant> %s\n", text)
	return err
}

func (c *consoleSynth) Cancel() {}

func (s *shell) navigate(target voice.NavTarget) {
	if target == voice.NavProducts {
		s.printf("-- products page --\n")
		s.listProducts(context.Background())
	}
}

// Run drives the read-eval loop until exit or EOF.
func (s *shell) Run(ctx context.Context) error {
	s.printf("trendbasket storefront. Type help for commands.\n")
	s.pipeline.Welcome(ctx)

	for {
		s.printf("> ")
		line, err := s.reader.ReadString('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if cmd == "exit" || cmd == "quit" {
			return nil
		}
		if err := s.dispatch(ctx, cmd, args); err != nil {
			s.printError(err)
		}
	}
}

func (s *shell) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		s.printHelp()
		return nil
	case "products":
		return s.listProducts(ctx)
	case "categories":
		return s.listCategories(ctx)
	case "filter":
		return s.applyFilter(args)
	case "add":
		return s.addToCart(ctx, args)
	case "remove":
		if len(args) != 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "usage: remove <product-id>")
		}
		return s.cart.RemoveItem(args[0])
	case "cart":
		s.printCart()
		return nil
	case "signup":
		return s.signup(ctx, args)
	case "login":
		return s.login(ctx, args)
	case "logout":
		return s.logout(ctx)
	case "whoami":
		s.printSession()
		return nil
	case "orders":
		return s.listOrders(ctx)
	case "checkout":
		return s.placeOrder(ctx)
	case "say":
		if len(args) > 0 {
			s.pending = append(s.pending, strings.Join(args, " "))
		}
		return s.pipeline.ListenAndFilter(ctx)
	case "nav":
		if len(args) > 0 {
			s.pending = append(s.pending, strings.Join(args, " "))
		}
		return s.pipeline.ListenAndNavigate(ctx)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown command "+cmd)
	}
}

func (s *shell) printHelp() {
	s.printf(`commands:
  products                      list products under the active filters
  categories                    list the catalog's categories
  filter [category=..] [search=..] [min=..] [max=..] [sort=default|price-low|price-high|rating|name]
  add <product-id>              add a product to the cart
  remove <product-id>           remove every cart line with that id
  cart                          show the cart and totals
  signup <username> <email> <password> [buyer|seller]
  login <email> <password>
  logout
  whoami                        show the signed-in profile
  orders                        list your past orders
  checkout                      purchase everything in the cart
  say [utterance]               speak a filter command ("say show me jeans")
  nav [utterance]               speak a navigation command ("nav take me to products")
  exit
`)
}

func (s *shell) refreshCatalog(ctx context.Context) error {
	all, err := s.products.GetAllProducts(ctx)
	if err != nil {
		return err
	}
	s.catalog = all
	return nil
}

func (s *shell) listProducts(ctx context.Context) error {
	if err := s.refreshCatalog(ctx); err != nil {
		return err
	}
	visible := products.FilterAndSort(s.catalog, s.query)
	if len(visible) == 0 {
		s.printf("no products match the active filters\n")
		return nil
	}
	for _, p := range visible {
		s.printf("%-26s %-20s %-12s %8.2f  %.1f*  -%.0f%%\n",
			p.ID, p.Name, p.Category, p.Price, p.Rating, p.DiscountPercent)
	}
	return nil
}

func (s *shell) listCategories(ctx context.Context) error {
	if err := s.refreshCatalog(ctx); err != nil {
		return err
	}
	for _, c := range products.Categories(s.catalog) {
		s.printf("%s\n", c)
	}
	return nil
}

func (s *shell) applyFilter(args []string) error {
	if len(args) == 0 {
		s.query = products.Query{}
		s.category.SetCategory("")
		s.printf("filters cleared\n")
		return nil
	}
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found {
			return pkgerrors.New(pkgerrors.CodeValidation, "filters look like key=value, got "+arg)
		}
		switch key {
		case "category":
			s.category.SetCategory(value)
		case "search":
			s.query.SearchTerm = value
		case "min":
			bound, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "min must be a number")
			}
			s.query.MinPrice = &bound
		case "max":
			bound, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "max must be a number")
			}
			s.query.MaxPrice = &bound
		case "sort":
			s.query.SortKey = products.SortKey(value)
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown filter "+key)
		}
	}
	return nil
}

func (s *shell) addToCart(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: add <product-id>")
	}
	product, err := s.products.GetProduct(ctx, args[0])
	if err != nil {
		return err
	}
	item := cart.LineItem{
		ID:              product.ID,
		Name:            product.Name,
		UnitPrice:       product.Price,
		DiscountPercent: product.DiscountPercent,
		Quantity:        1,
	}
	if len(product.Images) > 0 {
		item.ImageURL = product.Images[0]
	}
	if err := s.cart.AddItem(item); err != nil {
		return err
	}
	s.printf("added %s, cart has %d items\n", product.Name, s.cart.TotalCount())
	return nil
}

func (s *shell) printCart() {
	items := s.cart.Items()
	if len(items) == 0 {
		s.printf("cart is empty\n")
		return
	}
	for _, item := range items {
		s.printf("%-26s %-20s %8.2f  -%.0f%%  x%d\n",
			item.ID, item.Name, item.UnitPrice, item.DiscountPercent, item.Quantity)
	}
	totals := s.checkout.Totals()
	s.printf("subtotal %s  tax %s  total %s\n",
		totals.Subtotal.StringFixed(2), totals.Tax.StringFixed(2), totals.Total.StringFixed(2))
}

func (s *shell) signup(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: signup <username> <email> <password> [buyer|seller]")
	}
	input := auth.SignupInput{
		Username: args[0],
		Email:    args[1],
		Password: args[2],
	}
	if len(args) == 4 {
		input.Role = auth.Role(args[3])
	}
	if err := s.auth.Signup(ctx, input); err != nil {
		return err
	}
	s.printf("account created, please login\n")
	return nil
}

func (s *shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: login <email> <password>")
	}
	if err := s.auth.Login(ctx, auth.LoginInput{Email: args[0], Password: args[1]}); err != nil {
		return err
	}
	s.printSession()
	return nil
}

func (s *shell) logout(ctx context.Context) error {
	state := s.auth.State()
	email := ""
	if state.User != nil {
		email = state.User.Email
	}
	err := s.auth.Logout(ctx, email)
	s.printf("signed out\n")
	return err
}

func (s *shell) printSession() {
	state := s.auth.State()
	if !state.IsAuthenticated || state.User == nil {
		s.printf("not signed in\n")
		return
	}
	s.printf("%s <%s> (%s)\n", state.User.Username, state.User.Email, state.User.Role)
}

func (s *shell) listOrders(ctx context.Context) error {
	state := s.auth.State()
	if state.User == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to see your orders")
	}
	orders, err := s.products.Orders(ctx, state.User.ID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		s.printf("no orders yet\n")
		return nil
	}
	for _, p := range orders {
		s.printf("%-26s %-20s %8.2f\n", p.ID, p.Name, p.Price)
	}
	return nil
}

func (s *shell) placeOrder(ctx context.Context) error {
	state := s.auth.State()
	userID := ""
	if state.User != nil {
		userID = state.User.ID
	}
	totals := s.checkout.Totals()
	if err := s.checkout.PlaceOrder(ctx, userID); err != nil {
		return err
	}
	s.printf("order placed, charged %s\n", totals.Total.StringFixed(2))
	return nil
}

func (s *shell) printError(err error) {
	if typed := pkgerrors.As(err); typed != nil {
		meta := pkgerrors.MetadataFor(typed.Code())
		s.printf("error: %s (%s)\n", typed.Message(), meta.PublicMessage)
		if details := typed.Details(); details != nil {
			s.printf("  %v\n", details)
		}
		return
	}
	s.printf("error: %v\n", err)
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
