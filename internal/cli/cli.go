// Package cli is the interactive storefront shell. It reads commands from
// an input stream and drives the catalog, cart, session and checkout
// stores, which keeps the loop itself free of business rules.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/KyoTung/camera-store-client/internal/api"
	"github.com/KyoTung/camera-store-client/internal/app"
	"github.com/KyoTung/camera-store-client/internal/checkout"
)

// CLI runs the interactive shop loop.
type CLI struct {
	app *app.App
	in  *bufio.Scanner
	out io.Writer

	// discount applied to the current cart, as a fraction
	discount     float64
	discountCode string
}

// New creates a CLI reading commands from in and writing to out.
func New(application *app.App, in io.Reader, out io.Writer) *CLI {
	return &CLI{
		app: application,
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Run reads and executes commands until EOF, the exit command, or
// context cancellation.
func (c *CLI) Run(ctx context.Context) error {
	fmt.Fprintln(c.out, "camera store client. Type 'help' for commands.")

	for {
		fmt.Fprint(c.out, "> ")
		line, ok := c.readLine(ctx)
		if !ok {
			return ctx.Err()
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		if cmd == "exit" || cmd == "quit" {
			fmt.Fprintln(c.out, "bye")
			return nil
		}
		if err := c.dispatch(ctx, cmd, args); err != nil {
			fmt.Fprintf(c.out, "error: %s\n", err)
		}
	}
}

func (c *CLI) readLine(ctx context.Context) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

func (c *CLI) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		c.printHelp()
		return nil
	case "products":
		return c.listProducts(ctx)
	case "featured":
		return c.listFeatured(ctx)
	case "product":
		return c.showProduct(ctx, args)
	case "brands":
		return c.listBrands(ctx)
	case "brand":
		return c.listBrandProducts(ctx, args)
	case "categories":
		return c.listCategories(ctx)
	case "category":
		return c.listCategoryProducts(ctx, args)
	case "search":
		return c.search(ctx, args)
	case "history":
		return c.history(ctx, args)
	case "add":
		return c.addToCart(ctx, args)
	case "cart":
		return c.showCart()
	case "remove":
		return c.removeLine(ctx, args)
	case "qty":
		return c.updateQuantity(ctx, args)
	case "clear":
		c.app.Cart.Clear(ctx)
		c.discount, c.discountCode = 0, ""
		fmt.Fprintln(c.out, "cart cleared")
		return nil
	case "discount":
		return c.applyDiscount(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "register":
		return c.register(ctx)
	case "logout":
		return c.logout(ctx)
	case "whoami":
		return c.whoami()
	case "profile":
		return c.updateProfile(ctx)
	case "checkout":
		return c.checkout(ctx)
	case "orders":
		return c.orderHistory(ctx)
	case "order":
		return c.orderDetail(ctx, args)
	case "cancel":
		return c.cancelOrder(ctx, args)
	case "received":
		return c.markReceived(ctx, args)
	case "refund":
		return c.requestRefund(ctx, args)
	default:
		return fmt.Errorf("unknown command %q, type 'help'", cmd)
	}
}

func (c *CLI) printHelp() {
	fmt.Fprint(c.out, `commands:
  products | featured | product <id>
  brands | brand <id> | categories | category <id>
  search <term> | history [clear]
  add <product-id> | cart | remove <line-id> | qty <line-id> <n> | clear
  discount <code>
  login <email> <password> | register | logout | whoami | profile
  checkout | orders | order <id> | cancel <id> | received <id> | refund <id>
  exit
`)
}

func (c *CLI) listProducts(ctx context.Context) error {
	products, err := c.app.API.Products(ctx)
	if err != nil {
		return err
	}
	c.printProducts(products)
	return nil
}

func (c *CLI) listFeatured(ctx context.Context) error {
	products, err := c.app.API.FeaturedProducts(ctx)
	if err != nil {
		return err
	}
	c.printProducts(products)
	return nil
}

func (c *CLI) printProducts(products []api.Product) {
	if len(products) == 0 {
		fmt.Fprintln(c.out, "no products")
		return
	}
	for _, p := range products {
		fmt.Fprintf(c.out, "  [%d] %s  %.2f\n", p.ID, p.Name, p.Price)
	}
}

func (c *CLI) showProduct(ctx context.Context, args []string) error {
	id, err := parseID(args, "product id")
	if err != nil {
		return err
	}
	p, err := c.app.API.ProductDetail(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "  [%d] %s  %.2f\n", p.ID, p.Name, p.Price)
	if p.Description != "" {
		fmt.Fprintf(c.out, "  %s\n", p.Description)
	}
	return nil
}

func (c *CLI) listBrands(ctx context.Context) error {
	brands, err := c.app.API.Brands(ctx)
	if err != nil {
		return err
	}
	for _, b := range brands {
		fmt.Fprintf(c.out, "  [%d] %s\n", b.ID, b.Name)
	}
	return nil
}

func (c *CLI) listBrandProducts(ctx context.Context, args []string) error {
	id, err := parseID(args, "brand id")
	if err != nil {
		return err
	}
	products, err := c.app.API.BrandProducts(ctx, id)
	if err != nil {
		return err
	}
	c.printProducts(products)
	return nil
}

func (c *CLI) listCategoryProducts(ctx context.Context, args []string) error {
	id, err := parseID(args, "category id")
	if err != nil {
		return err
	}
	products, err := c.app.API.CategoryProducts(ctx, id)
	if err != nil {
		return err
	}
	c.printProducts(products)
	return nil
}

func (c *CLI) listCategories(ctx context.Context) error {
	categories, err := c.app.API.Categories(ctx)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		fmt.Fprintf(c.out, "  [%d] %s\n", cat.ID, cat.Name)
	}
	return nil
}

// search fetches the catalog and filters by a case-insensitive name
// match, recording the term in the search history.
func (c *CLI) search(ctx context.Context, args []string) error {
	term := strings.Join(args, " ")
	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("usage: search <term>")
	}
	c.app.Search.Add(ctx, term)

	products, err := c.app.API.Products(ctx)
	if err != nil {
		return err
	}
	needle := strings.ToLower(strings.TrimSpace(term))
	var matches []api.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			matches = append(matches, p)
		}
	}
	c.printProducts(matches)
	return nil
}

func (c *CLI) history(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "clear" {
		c.app.Search.Clear(ctx)
		fmt.Fprintln(c.out, "history cleared")
		return nil
	}
	entries := c.app.Search.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "no recent searches")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(c.out, "  %s\n", e)
	}
	return nil
}

func (c *CLI) addToCart(ctx context.Context, args []string) error {
	id, err := parseID(args, "product id")
	if err != nil {
		return err
	}
	p, err := c.app.API.ProductDetail(ctx, id)
	if err != nil {
		return err
	}
	c.app.Cart.Add(ctx, p.CartProduct())
	fmt.Fprintf(c.out, "added %s (%d item(s) in cart)\n", p.Name, c.app.Cart.TotalQuantity())
	return nil
}

func (c *CLI) showCart() error {
	lines := c.app.Cart.Lines()
	if len(lines) == 0 {
		fmt.Fprintln(c.out, "cart is empty")
		return nil
	}
	for _, l := range lines {
		fmt.Fprintf(c.out, "  %s  %s  x%d  %.2f\n", l.ID, l.Name, l.Quantity, l.LineTotal())
	}
	fmt.Fprintf(c.out, "subtotal: %.2f\n", c.app.Cart.Subtotal())
	if c.discount > 0 {
		fmt.Fprintf(c.out, "discount %s: -%.0f%%\n", c.discountCode, c.discount*100)
		fmt.Fprintf(c.out, "total: %.2f\n", c.app.Cart.GrandTotal(c.discount, 0))
	}
	return nil
}

func (c *CLI) removeLine(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: remove <line-id>")
	}
	c.app.Cart.Remove(ctx, args[0])
	fmt.Fprintln(c.out, "removed")
	return nil
}

func (c *CLI) updateQuantity(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: qty <line-id> <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid quantity %q", args[1])
	}
	c.app.Cart.UpdateQuantity(ctx, args[0], n)
	fmt.Fprintln(c.out, "updated")
	return nil
}

func (c *CLI) applyDiscount(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: discount <code>")
	}
	fraction, err := c.app.Discounts.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	c.discount, c.discountCode = fraction, args[0]
	fmt.Fprintf(c.out, "discount applied: %.0f%% off\n", fraction*100)
	return nil
}

func (c *CLI) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	auth, err := c.app.API.Login(ctx, api.Credentials{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	if err := c.app.Session.Establish(ctx, auth); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "logged in as %s\n", auth.User.Name)
	return nil
}

// register collects a new account field by field and logs straight in
// with the returned session.
func (c *CLI) register(ctx context.Context) error {
	var reg api.Registration
	prompts := []struct {
		label string
		dst   *string
	}{
		{"name", &reg.Name},
		{"email", &reg.Email},
		{"password", &reg.Password},
		{"confirm password", &reg.PasswordConfirmation},
	}
	for _, p := range prompts {
		fmt.Fprintf(c.out, "%s: ", p.label)
		line, ok := c.readLine(ctx)
		if !ok {
			return fmt.Errorf("registration aborted")
		}
		*p.dst = strings.TrimSpace(line)
	}
	if reg.Password != reg.PasswordConfirmation {
		return fmt.Errorf("passwords do not match")
	}

	auth, err := c.app.API.Register(ctx, reg)
	if err != nil {
		return err
	}
	if err := c.app.Session.Establish(ctx, auth); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "welcome, %s\n", auth.User.Name)
	return nil
}

// updateProfile edits the shopper's contact details. An empty answer
// keeps the current value.
func (c *CLI) updateProfile(ctx context.Context) error {
	user := c.app.Session.User()
	if user == nil {
		return fmt.Errorf("log in to edit your profile")
	}

	prompts := []struct {
		label string
		dst   *string
	}{
		{"name", &user.Name},
		{"phone", &user.Phone},
		{"address", &user.Address},
	}
	for _, p := range prompts {
		fmt.Fprintf(c.out, "%s [%s]: ", p.label, *p.dst)
		line, ok := c.readLine(ctx)
		if !ok {
			return fmt.Errorf("profile edit aborted")
		}
		if v := strings.TrimSpace(line); v != "" {
			*p.dst = v
		}
	}

	if err := c.app.API.UpdateUser(ctx, *user); err != nil {
		return err
	}
	if err := c.app.Session.UpdateUser(ctx, *user); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "profile updated")
	return nil
}

func (c *CLI) logout(ctx context.Context) error {
	if !c.app.Session.LoggedIn() {
		fmt.Fprintln(c.out, "not logged in")
		return nil
	}
	if err := c.app.API.Logout(ctx); err != nil {
		return err
	}
	if err := c.app.Session.Clear(ctx); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "logged out")
	return nil
}

func (c *CLI) whoami() error {
	user := c.app.Session.User()
	if user == nil {
		fmt.Fprintln(c.out, "not logged in")
		return nil
	}
	fmt.Fprintf(c.out, "%s <%s>\n", user.Name, user.Email)
	return nil
}

// checkout collects the shipping form field by field, then submits.
func (c *CLI) checkout(ctx context.Context) error {
	form := checkout.Form{
		Discount: c.discount,
	}
	prompts := []struct {
		label string
		dst   *string
	}{
		{"name", &form.Name},
		{"email", &form.Email},
		{"phone", &form.Phone},
		{"address", &form.Address},
		{"city", &form.City},
		{"district", &form.District},
		{"commune", &form.Commune},
		{"payment (cod/bank)", &form.PaymentMethod},
	}
	for _, p := range prompts {
		fmt.Fprintf(c.out, "%s: ", p.label)
		line, ok := c.readLine(ctx)
		if !ok {
			return fmt.Errorf("checkout aborted")
		}
		*p.dst = strings.TrimSpace(line)
	}

	result, err := c.app.Checkout.Submit(ctx, form)
	if err != nil {
		return err
	}
	c.discount, c.discountCode = 0, ""
	fmt.Fprintf(c.out, "order placed, id %d\n", result.OrderID)
	return nil
}

func (c *CLI) orderHistory(ctx context.Context) error {
	user := c.app.Session.User()
	if user == nil {
		return fmt.Errorf("log in to see your orders")
	}
	orders, err := c.app.API.OrderHistory(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(c.out, "no orders")
		return nil
	}
	for _, o := range orders {
		fmt.Fprintf(c.out, "  [%d] %s  %.2f  %s\n", o.ID, o.Status, o.GrandTotal, o.CreatedAt)
	}
	return nil
}

func (c *CLI) orderDetail(ctx context.Context, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	o, err := c.app.API.OrderConfirmation(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %d: %s, %s, total %.2f\n", o.ID, o.Status, o.PaymentStatus, o.GrandTotal)
	for _, l := range o.Items {
		fmt.Fprintf(c.out, "  %s x%d  %.2f\n", l.Name, l.Quantity, l.LineTotal())
	}
	return nil
}

func (c *CLI) cancelOrder(ctx context.Context, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	if err := c.app.API.CancelOrder(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %d cancelled\n", id)
	return nil
}

// markReceived confirms delivery of a shipped order.
func (c *CLI) markReceived(ctx context.Context, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	if err := c.app.API.MarkShipped(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "order %d marked received\n", id)
	return nil
}

// requestRefund asks for a refund on a cancelled order.
func (c *CLI) requestRefund(ctx context.Context, args []string) error {
	id, err := parseID(args, "order id")
	if err != nil {
		return err
	}
	if err := c.app.API.MarkRefunded(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "refund requested for order %d\n", id)
	return nil
}

func parseID(args []string, what string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: expected one %s", what)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return id, nil
}
