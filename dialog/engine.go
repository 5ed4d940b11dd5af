// Package dialog turns chat text into ordering steps and replies.
package dialog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"meal-telegram/lang"
	"meal-telegram/models"
	"meal-telegram/services"
	"meal-telegram/session"
)

// Event is one inbound chat message.
type Event struct {
	UserID      string
	DisplayName string // may be empty
	Text        string
}

// Option is a quick-reply button: Label is shown, Payload is sent back as text.
type Option struct {
	Label   string
	Payload string
}

// Reply is the single answer to an Event. Err carries the domain failure
// behind a user-visible message; it is informational, the reply is still sent.
type Reply struct {
	Text    string
	Options []Option
	Err     error
}

type Deps struct {
	Catalog     services.Catalog
	Registry    *services.Registry
	Ledger      services.Ledger
	Reporter    *services.Reporter
	Sessions    session.Store
	Vocabulary  *services.Vocabulary
	Window      services.MealWindow
	Clock       services.Clock
	MaxQuantity int
	PageSize    int
	IsAdmin     func(userID string) bool
}

type Engine struct {
	Deps
	locks session.Locks
}

func New(d Deps) *Engine {
	if d.Clock == nil {
		d.Clock = services.SystemClock{}
	}
	if d.Vocabulary == nil {
		d.Vocabulary = services.DefaultVocabulary()
	}
	if d.MaxQuantity < 1 {
		d.MaxQuantity = 5
	}
	if d.PageSize < 1 {
		d.PageSize = 12
	}
	if d.IsAdmin == nil {
		d.IsAdmin = func(string) bool { return true }
	}
	return &Engine{Deps: d}
}

// Handle processes one event under the user's lock and returns exactly one
// reply. A non-nil error means a store failed; nothing partial was committed
// and the caller should answer with a generic failure.
func (e *Engine) Handle(ctx context.Context, ev Event) (Reply, error) {
	unlock := e.locks.Lock(ev.UserID)
	defer unlock()

	in := classify(ev.Text)
	if in.shape == shapePick {
		return e.pickItem(ctx, ev, in.value)
	}
	if in.shape == shapeText {
		if run, args, ok := lookupCommand(in.value); ok {
			return run(e, ctx, ev, args)
		}
	}

	p, ok, err := e.Sessions.Get(ctx, ev.UserID)
	if err != nil {
		return Reply{}, err
	}
	if !ok || p.Step == session.StepIdle {
		if in.shape == shapeText {
			return Reply{Text: lang.T("unknown_command", in.value), Err: services.ErrUnknownCommand}, nil
		}
		return Reply{Text: lang.T("no_pending"), Err: services.ErrInvalidSelection}, nil
	}
	if h, ok := transitions[transitionKey{p.Step, in.shape}]; ok {
		return h(e, ctx, ev, p, in.value)
	}
	return e.reprompt(p, ""), nil
}

type shape int

const (
	shapeText shape = iota
	shapePick
	shapeSweetness
	shapeIce
	shapeQuantity
	shapeNumber
)

type input struct {
	shape shape
	value string
}

var stepPrefixes = []struct {
	prefix string
	shape  shape
}{
	{"點餐", shapePick},
	{"甜度", shapeSweetness},
	{"冰塊", shapeIce},
	{"數量", shapeQuantity},
}

func classify(text string) input {
	text = strings.TrimSpace(text)
	for _, sp := range stepPrefixes {
		if rest, ok := strings.CutPrefix(text, sp.prefix); ok {
			rest = strings.TrimSpace(rest)
			if sp.shape == shapePick && rest == "" {
				// bare 點餐 is the browse command
				break
			}
			return input{shape: sp.shape, value: rest}
		}
	}
	if services.IsItemCode(strings.ToUpper(text)) {
		return input{shape: shapePick, value: text}
	}
	if _, ok := parseQuantity(text); ok {
		return input{shape: shapeNumber, value: text}
	}
	return input{shape: shapeText, value: text}
}

// parseQuantity accepts "2", "2份" or "2杯".
func parseQuantity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "份"), "杯")
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

type transitionKey struct {
	step  session.Step
	shape shape
}

type stepHandler func(e *Engine, ctx context.Context, ev Event, p *session.Pending, value string) (Reply, error)

// Payload shapes accepted at each awaiting step. Anything else re-prompts.
var transitions = map[transitionKey]stepHandler{
	{session.StepAwaitingSweetness, shapeSweetness}: (*Engine).chooseSweetness,
	{session.StepAwaitingSweetness, shapeText}:      (*Engine).chooseSweetness,
	{session.StepAwaitingSweetness, shapeNumber}:    (*Engine).chooseSweetness,
	{session.StepAwaitingIce, shapeIce}:             (*Engine).chooseIce,
	{session.StepAwaitingIce, shapeText}:            (*Engine).chooseIce,
	{session.StepAwaitingIce, shapeNumber}:          (*Engine).chooseIce,
	{session.StepAwaitingQuantity, shapeQuantity}:   (*Engine).chooseQuantity,
	{session.StepAwaitingQuantity, shapeNumber}:     (*Engine).chooseQuantity,
	{session.StepAwaitingQuantity, shapeText}:       (*Engine).chooseQuantity,
}

// pickItem starts (or replaces) the user's session. A failed pick leaves any
// existing session alone.
func (e *Engine) pickItem(ctx context.Context, ev Event, ref string) (Reply, error) {
	now := e.Clock.Now()
	win := e.Window.Resolve(now)
	if !win.Open {
		return Reply{Text: lang.T("window_closed"), Err: services.ErrOrderWindowClosed}, nil
	}
	food, foodOK, err := e.Registry.GetFoodVendor(ctx, win.Date, win.Slot)
	if err != nil {
		return Reply{}, err
	}
	drink, drinkOK, err := e.Registry.GetDrinkVendor(ctx, win.Date, win.Slot)
	if err != nil {
		return Reply{}, err
	}
	if !foodOK && !drinkOK {
		return Reply{Text: lang.T("vendor_not_configured_any", services.SlotLabel(win.Slot)), Err: services.ErrVendorNotConfigured}, nil
	}
	var active []*models.Vendor
	if foodOK {
		active = append(active, food)
	}
	if drinkOK {
		active = append(active, drink)
	}

	item, vendor, err := e.resolveItem(ctx, ref, active)
	if errors.Is(err, services.ErrItemNotFound) {
		return Reply{Text: lang.T("item_not_found", ref), Err: err}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	if vendor == nil {
		return Reply{
			Text: lang.T("item_not_today", item.Code, services.SlotLabel(win.Slot)),
			Err:  services.ErrItemNotFound,
		}, nil
	}

	p := &session.Pending{
		UserID:     ev.UserID,
		Step:       session.StepAwaitingQuantity,
		ItemID:     item.ID,
		ItemCode:   item.Code,
		ItemName:   item.Name,
		Price:      item.Price,
		VendorID:   vendor.ID,
		VendorCode: vendor.Code,
		VendorName: vendor.Name,
		Kind:       vendor.Kind,
		Date:       win.Date,
		Slot:       win.Slot,
		CreatedAt:  now,
	}
	if vendor.Kind.Customizable() {
		p.Step = session.StepAwaitingSweetness
	}
	if err := e.Sessions.Put(ctx, p); err != nil {
		return Reply{}, err
	}
	return e.prompt(p), nil
}

// resolveItem looks up ref as a code first, then by exact name among the
// active vendors in order. A code that belongs to no active vendor comes back
// with a nil vendor.
func (e *Engine) resolveItem(ctx context.Context, ref string, active []*models.Vendor) (*models.MenuItem, *models.Vendor, error) {
	if code := strings.ToUpper(ref); services.IsItemCode(code) {
		item, err := e.Catalog.ItemByCode(ctx, code)
		if errors.Is(err, services.ErrNotFound) {
			return nil, nil, services.ErrItemNotFound
		}
		if err != nil {
			return nil, nil, err
		}
		for _, v := range active {
			if v.ID == item.VendorID {
				return item, v, nil
			}
		}
		return item, nil, nil
	}
	for _, v := range active {
		item, err := e.Catalog.ItemByName(ctx, v.ID, ref)
		if errors.Is(err, services.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return item, v, nil
	}
	return nil, nil, services.ErrItemNotFound
}

func (e *Engine) chooseSweetness(ctx context.Context, _ Event, p *session.Pending, value string) (Reply, error) {
	s, ok := e.vocab(p).MatchSweetness(value)
	if !ok {
		return e.reprompt(p, lang.T("invalid_sweetness", value)), nil
	}
	p.Sweetness = s
	p.Step = session.StepAwaitingIce
	if err := e.Sessions.Put(ctx, p); err != nil {
		return Reply{}, err
	}
	return e.prompt(p), nil
}

func (e *Engine) chooseIce(ctx context.Context, _ Event, p *session.Pending, value string) (Reply, error) {
	ice, ok := e.vocab(p).MatchIce(value)
	if !ok {
		return e.reprompt(p, lang.T("invalid_ice", value)), nil
	}
	p.Ice = ice
	p.Step = session.StepAwaitingQuantity
	if err := e.Sessions.Put(ctx, p); err != nil {
		return Reply{}, err
	}
	return e.prompt(p), nil
}

func (e *Engine) chooseQuantity(ctx context.Context, ev Event, p *session.Pending, value string) (Reply, error) {
	n, ok := parseQuantity(value)
	if !ok || n < 1 || n > e.MaxQuantity {
		return e.reprompt(p, lang.T("invalid_quantity", e.MaxQuantity)), nil
	}
	return e.commit(ctx, ev, p, n)
}

// commit re-checks the window, the vendor of the day and the item, then
// writes the ledger before tearing the session down. A failed check drops
// the session; a failed ledger write keeps it so the user can retry.
func (e *Engine) commit(ctx context.Context, ev Event, p *session.Pending, qty int) (Reply, error) {
	win := e.Window.Resolve(e.Clock.Now())
	if !win.Open || win.Date != p.Date || win.Slot != p.Slot {
		return e.abort(ctx, p, lang.T("window_closed_commit", services.SlotLabel(p.Slot)), services.ErrOrderWindowClosed)
	}

	active, ok, err := e.Registry.Get(ctx, p.Date, p.Slot, p.Kind)
	if err != nil {
		return Reply{}, err
	}
	if !ok || active.ID != p.VendorID {
		return e.abort(ctx, p, lang.T("vendor_changed", services.SlotLabel(p.Slot)), services.ErrVendorChanged)
	}

	item, err := e.Catalog.ItemByID(ctx, p.ItemID)
	if errors.Is(err, services.ErrNotFound) || (err == nil && item.VendorID != p.VendorID) {
		return e.abort(ctx, p, lang.T("item_removed", p.ItemCode), services.ErrItemNotFound)
	}
	if err != nil {
		return Reply{}, err
	}

	note := drinkNote(p)
	_, err = e.Ledger.RecordOrder(ctx, models.CreateOrderInput{
		PlatformUserID: ev.UserID,
		DisplayName:    ev.DisplayName,
		Date:           p.Date,
		Slot:           p.Slot,
		ItemID:         item.ID,
		Quantity:       qty,
		Note:           note,
	})
	if err != nil {
		return Reply{}, fmt.Errorf("record order: %w", err)
	}
	e.dropSession(ctx, p.UserID)

	text := lang.T("order_confirmed", item.Code, item.Name, qty, services.SlotLabel(p.Slot), item.Price, item.Price*int64(qty))
	if note != "" {
		text += lang.T("order_note", note)
	}
	return Reply{Text: text}, nil
}

func (e *Engine) abort(ctx context.Context, p *session.Pending, text string, cause error) (Reply, error) {
	e.dropSession(ctx, p.UserID)
	return Reply{Text: text, Err: cause}, nil
}

// dropSession is cleanup; the ledger is already the source of truth.
func (e *Engine) dropSession(ctx context.Context, userID string) {
	if err := e.Sessions.Delete(ctx, userID); err != nil {
		logf(ctx, "delete session %s: %v", userID, err)
	}
}

func drinkNote(p *session.Pending) string {
	if !p.Kind.Customizable() {
		return ""
	}
	return lang.T("sweetness_label", p.Sweetness) + " " + lang.T("ice_label", p.Ice)
}

func (e *Engine) vocab(p *session.Pending) services.Vocab {
	return e.Vocabulary.For(p.VendorCode, p.VendorName)
}

// prompt renders the question for the session's current step.
func (e *Engine) prompt(p *session.Pending) Reply {
	switch p.Step {
	case session.StepAwaitingSweetness:
		return Reply{
			Text:    lang.T("choose_sweetness", p.ItemCode, p.ItemName, p.Price),
			Options: valueOptions("甜度 ", e.vocab(p).Sweetness),
		}
	case session.StepAwaitingIce:
		return Reply{
			Text:    lang.T("choose_ice", p.Sweetness),
			Options: valueOptions("冰塊 ", e.vocab(p).Ice),
		}
	}
	unit := "quantity_unit_food"
	text := lang.T("choose_quantity_food", p.ItemCode, p.ItemName, p.Price, e.MaxQuantity)
	if p.Kind.Customizable() {
		unit = "quantity_unit_drink"
		text = lang.T("choose_quantity_drink", p.Sweetness, p.Ice, e.MaxQuantity)
	}
	opts := make([]Option, 0, e.MaxQuantity)
	for n := 1; n <= e.MaxQuantity; n++ {
		opts = append(opts, Option{Label: lang.T(unit, n), Payload: "數量 " + strconv.Itoa(n)})
	}
	return Reply{Text: text, Options: opts}
}

// reprompt repeats the current step unchanged. The session is not touched.
func (e *Engine) reprompt(p *session.Pending, problem string) Reply {
	r := e.prompt(p)
	if problem != "" {
		r.Text = problem + "\n" + r.Text
	}
	r.Err = services.ErrInvalidSelection
	return r
}

func valueOptions(prefix string, values []string) []Option {
	opts := make([]Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, Option{Label: services.SafeLabel(v), Payload: prefix + v})
	}
	return opts
}
