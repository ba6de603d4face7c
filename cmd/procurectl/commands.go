package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"procurement/pkg/api"
	"procurement/pkg/catalog"
	"procurement/pkg/client"
	"procurement/pkg/dashboard"
	"procurement/pkg/lifecycle"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	flag "github.com/spf13/pflag"
)

type command struct {
	name string
	help string
	run  func(a *app, ctx context.Context, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"login", "sign in: login <email>", (*app).login},
		{"register", "create an account", (*app).register},
		{"logout", "sign out", (*app).logout},
		{"whoami", "show the signed-in user", (*app).whoami},
		{"dashboard", "show the home screen for your role", (*app).showDashboard},
		{"list", "list requests (--pending, --processed)", (*app).list},
		{"create", "file a purchase request", (*app).create},
		{"update", "edit a pending request: update <id>", (*app).update},
		{"delete", "delete a request: delete <id>", (*app).deleteRequest},
		{"approve", "approve a request: approve <id>", (*app).approve},
		{"reject", "reject a request: reject <id>", (*app).reject},
		{"status", "set any status: status <id> <stato>", (*app).changeStatus},
		{"categories", "list categories", (*app).categories},
		{"category-add", "add a category", (*app).addCategory},
		{"category-edit", "edit a category: category-edit <id>", (*app).editCategory},
		{"category-delete", "delete a category: category-delete <id>", (*app).deleteCategory},
		{"stats", "request counts per status", (*app).stats},
		{"export", "download all requests as XLSX", (*app).export},
		{"audit", "show the audit trail", (*app).audit},
	}
}

var errUsage = errors.New("invalid arguments")

func (a *app) run(ctx context.Context, name string, args []string) error {
	for _, c := range commands {
		if c.name == name {
			return c.run(a, ctx, args)
		}
	}
	return errors.Wrapf(errUsage, "unknown command %q", name)
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var derr *lifecycle.DraftError
	switch {
	case errors.As(err, &derr):
		return derr.Message
	case errors.Is(err, dashboard.ErrLoginRequired), errors.Is(err, client.ErrUnauthorized):
		return "effettua il login con 'procurectl login <email>'"
	case errors.Is(err, lifecycle.ErrCancelled), errors.Is(err, catalog.ErrCancelled):
		return "operazione annullata"
	case errors.Is(err, errUsage), errors.Is(err, lifecycle.ErrMissingIdentifier),
		errors.Is(err, catalog.ErrMissingIdentifier), errors.Is(err, lifecycle.ErrInvalidStatus),
		errors.Is(err, catalog.ErrMissingDescription), errors.Is(err, catalog.ErrNegativeCost):
		return err.Error()
	}
	return client.Message(err)
}

// confirm asks a yes/no question on the terminal. Anything but an explicit yes declines.
func (a *app) confirm(prompt string) bool {
	fmt.Fprintf(a.out, "%s [s/N] ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "si", "sì", "y", "yes":
		return true
	}
	return false
}

// requireLogin mirrors the redirect to the login view: no identity, no call.
func (a *app) requireLogin() (*api.User, error) {
	user := a.session.Current()
	if user == nil {
		return nil, dashboard.ErrLoginRequired
	}
	return user, nil
}

func (a *app) prompt(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	password := fs.StringP("password", "p", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if fs.NArg() != 1 {
		return errors.Wrap(errUsage, "login <email>")
	}
	secret := *password
	if secret == "" {
		secret = a.prompt("Password")
	}
	user, err := a.session.Login(ctx, fs.Arg(0), secret)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Benvenuto %s (%s)\n", user.FullName(), user.Role)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req api.RegisterRequest
	fs.StringVar(&req.FirstName, "first-name", "", "first name")
	fs.StringVar(&req.LastName, "last-name", "", "last name")
	fs.StringVar(&req.Username, "email", "", "email")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.Role, "role", api.RoleEmployee, "role (Responsabile or Dipendente)")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if req.FirstName == "" || req.LastName == "" || req.Username == "" || req.Password == "" {
		return errors.Wrap(errUsage, "--first-name, --last-name, --email and --password are required")
	}
	if !api.ValidRole(req.Role) {
		return errors.Wrapf(errUsage, "unknown role %q", req.Role)
	}
	user, err := a.session.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Registrato %s (%s)\n", user.FullName(), user.Role)
	return nil
}

func (a *app) logout(ctx context.Context, _ []string) error {
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logout effettuato")
	return nil
}

func (a *app) whoami(context.Context, []string) error {
	user, err := a.requireLogin()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", user.FullName(), user.Email, user.Role)
	return nil
}

func (a *app) showDashboard(ctx context.Context, _ []string) error {
	state, err := a.dashboard.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%s)\n\n", state.Identity.FullName(), state.Identity.Role)
	if !state.Identity.IsManager() {
		fmt.Fprintln(a.out, "Le mie richieste")
		printRequests(a.out, state.Requests, state.CategoryName)
		return nil
	}
	fmt.Fprintln(a.out, "Da approvare")
	printRequests(a.out, state.Pending, state.CategoryName)
	fmt.Fprintln(a.out, "\nGestite")
	printRequests(a.out, state.Processed, state.CategoryName)
	fmt.Fprintln(a.out, "\nCategorie")
	printCategories(a.out, state.Categories)
	return nil
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	onlyPending := fs.Bool("pending", false, "only requests awaiting a decision")
	onlyProcessed := fs.Bool("processed", false, "only decided requests")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.loadForDisplay(ctx); err != nil {
		return err
	}
	lists := a.requests.Lists()
	rows := lists.All
	switch {
	case *onlyPending:
		rows = lists.Pending
	case *onlyProcessed:
		rows = lists.Processed
	}
	printRequests(a.out, rows, a.categoryName)
	return nil
}

// loadForDisplay refreshes requests and categories together.
func (a *app) loadForDisplay(ctx context.Context) error {
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	return a.requests.Refresh(ctx)
}

func (a *app) categoryName(id string) string {
	if c, ok := a.catalog.Find(id); ok {
		return c.Description
	}
	return id
}

func draftFlags(fs *flag.FlagSet, d *lifecycle.Draft) {
	fs.StringVarP(&d.CategoryID, "category", "c", d.CategoryID, "category id")
	fs.IntVarP(&d.Quantity, "quantity", "q", d.Quantity, "quantity")
	fs.StringVarP(&d.Justification, "reason", "r", d.Justification, "justification")
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	d := lifecycle.Draft{Quantity: 1}
	draftFlags(fs, &d)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if err := d.Validate(); err != nil {
		return err
	}
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Costo: %s\n", a.requests.Preview(d).StringFixed(2))
	r, err := a.requests.Create(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Richiesta %s creata (%s)\n", r.ID, r.Status)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return errors.Wrap(errUsage, "update <id> [flags]")
	}
	id := args[0]
	current, err := a.api.GetRequest(ctx, id)
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	d := lifecycle.FromRequest(*current)
	draftFlags(fs, &d)
	if err := fs.Parse(args[1:]); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	r, err := a.requests.Update(ctx, id, d)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Richiesta %s aggiornata, costo %s\n", r.ID, r.Cost.StringFixed(2))
	return nil
}

func (a *app) confirmer(args []string, name string) (string, lifecycle.Confirm, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	assumeYes := fs.BoolP("yes", "y", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return "", nil, errors.Wrap(errUsage, err.Error())
	}
	if fs.NArg() != 1 {
		return "", nil, errors.Wrapf(errUsage, "%s <id>", name)
	}
	if *assumeYes {
		return fs.Arg(0), func(string) bool { return true }, nil
	}
	return fs.Arg(0), a.confirm, nil
}

func (a *app) deleteRequest(ctx context.Context, args []string) error {
	id, confirm, err := a.confirmer(args, "delete")
	if err != nil {
		return err
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.requests.Delete(ctx, id, confirm); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Richiesta %s eliminata\n", id)
	return nil
}

func (a *app) approve(ctx context.Context, args []string) error {
	return a.decide(ctx, args, a.requests.Approve)
}

func (a *app) reject(ctx context.Context, args []string) error {
	return a.decide(ctx, args, a.requests.Reject)
}

func (a *app) decide(ctx context.Context, args []string, fn func(context.Context, string) (*api.PurchaseRequest, error)) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	var id string
	if len(args) > 0 {
		id = args[0]
	}
	r, err := fn(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Richiesta %s: %s\n", r.ID, r.Status)
	return nil
}

func (a *app) changeStatus(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.Wrap(errUsage, "status <id> <In attesa|Approvata|Rifiutata>")
	}
	status := strings.Join(args[1:], " ")
	return a.decide(ctx, args[:1], func(ctx context.Context, id string) (*api.PurchaseRequest, error) {
		return a.requests.ChangeStatus(ctx, id, status)
	})
}

func (a *app) categories(ctx context.Context, _ []string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	printCategories(a.out, a.catalog.Categories())
	return nil
}

func categoryFlags(fs *flag.FlagSet, description *string) *string {
	fs.StringVarP(description, "description", "d", *description, "description")
	return fs.String("cost", "", "unit cost, empty for none")
}

func parseCost(raw string) (decimal.NullDecimal, error) {
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return decimal.NullDecimal{}, errors.Wrapf(errUsage, "invalid cost %q", raw)
	}
	return decimal.NewNullDecimal(d), nil
}

func (a *app) addCategory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("category-add", flag.ContinueOnError)
	var in api.CategoryInput
	rawCost := categoryFlags(fs, &in.Description)
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	unit, err := parseCost(*rawCost)
	if err != nil {
		return err
	}
	in.UnitCost = unit
	c, err := a.catalog.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Categoria %s creata\n", c.ID)
	return nil
}

func (a *app) editCategory(ctx context.Context, args []string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return errors.Wrap(errUsage, "category-edit <id> [flags]")
	}
	id := args[0]
	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	current, ok := a.catalog.Find(id)
	if !ok {
		return client.ErrNotFound
	}

	fs := flag.NewFlagSet("category-edit", flag.ContinueOnError)
	in := api.CategoryInput{Description: current.Description, UnitCost: current.UnitCost}
	rawCost := categoryFlags(fs, &in.Description)
	clearCost := fs.Bool("no-cost", false, "remove the unit cost")
	if err := fs.Parse(args[1:]); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	switch {
	case *clearCost:
		in.UnitCost = decimal.NullDecimal{}
	case fs.Changed("cost"):
		unit, err := parseCost(*rawCost)
		if err != nil {
			return err
		}
		in.UnitCost = unit
	}
	c, err := a.catalog.Update(ctx, id, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Categoria %s aggiornata\n", c.ID)
	return nil
}

func (a *app) deleteCategory(ctx context.Context, args []string) error {
	id, confirm, err := a.confirmer(args, "category-delete")
	if err != nil {
		return err
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.catalog.Delete(ctx, id, catalog.Confirm(confirm)); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Categoria %s eliminata\n", id)
	return nil
}

func (a *app) stats(ctx context.Context, _ []string) error {
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	s, err := a.api.RequestStats(ctx)
	if err != nil {
		return err
	}
	printStats(a.out, s)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	path := fs.StringP("out", "o", "richieste.xlsx", "output file")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	data, err := a.api.ExportRequests(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*path, data, 0o644); err != nil {
		return errors.Wrap(err, "write export")
	}
	fmt.Fprintf(a.out, "Esportate richieste in %s\n", *path)
	return nil
}

func (a *app) audit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("audit", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "entries per page")
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(errUsage, err.Error())
	}
	if _, err := a.requireLogin(); err != nil {
		return err
	}
	p, err := a.api.AuditLogs(ctx, *page, *limit)
	if err != nil {
		return err
	}
	printAudit(a.out, p)
	return nil
}
