package dialog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"meal-telegram/lang"
	"meal-telegram/models"
	"meal-telegram/services"
)

type commandFunc func(e *Engine, ctx context.Context, ev Event, args []string) (Reply, error)

type command struct {
	name  string
	exact bool // whole input must equal name; otherwise name is the first word
	run   commandFunc
}

// Exact commands are listed first so "飲料 統計" wins over "飲料".
var commands = []command{
	{"吃啥", true, (*Engine).todayFoodMenu},
	{"喝啥", true, (*Engine).todayDrinkMenu},
	{"點餐", true, (*Engine).orderMenu},
	{"今日午餐統計", true, (*Engine).lunchReport},
	{"今日晚餐統計", true, (*Engine).dinnerReport},
	{"餐點 統計", true, (*Engine).foodReport},
	{"飲料 統計", true, (*Engine).drinkReport},
	{"今日消費明細", true, (*Engine).spendReport},
	{"說明", true, (*Engine).help},
	{"今日餐廳", false, (*Engine).setFoodVendor},
	{"吃", false, (*Engine).setFoodVendor},
	{"今日飲料", false, (*Engine).setDrinkVendor},
	{"隨便吃", false, (*Engine).randomFood},
	{"隨便喝", false, (*Engine).randomDrink},
	{"餐廳", false, (*Engine).listFoodVendors},
	{"飲料", false, (*Engine).listDrinkVendors},
	{"菜單", false, (*Engine).browseMenu},
}

func lookupCommand(text string) (commandFunc, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, nil, false
	}
	joined := strings.Join(fields, " ")
	for _, c := range commands {
		if c.exact && joined == c.name {
			return c.run, nil, true
		}
		if !c.exact && fields[0] == c.name {
			return c.run, fields[1:], true
		}
	}
	return nil, nil, false
}

func (e *Engine) todayFoodMenu(ctx context.Context, _ Event, _ []string) (Reply, error) {
	return e.todayMenu(ctx, models.KindFood)
}

func (e *Engine) todayDrinkMenu(ctx context.Context, _ Event, _ []string) (Reply, error) {
	return e.todayMenu(ctx, models.KindDrink)
}

// todayMenu shows the categories of today's vendor for the report slot,
// falling back to the other slot.
func (e *Engine) todayMenu(ctx context.Context, kind models.VendorKind) (Reply, error) {
	now := e.Clock.Now()
	date := e.Window.Today(now)
	slot := e.Window.ReportSlot(now)
	for _, s := range []models.MealSlot{slot, otherSlot(slot)} {
		v, ok, err := e.Registry.Get(ctx, date, s, kind)
		if err != nil {
			return Reply{}, err
		}
		if ok {
			return e.categoryReply(ctx, v, 1)
		}
	}
	return Reply{Text: lang.T(string(kind) + "_not_set_today"), Err: services.ErrVendorNotConfigured}, nil
}

func otherSlot(s models.MealSlot) models.MealSlot {
	if s == models.SlotLunch {
		return models.SlotDinner
	}
	return models.SlotLunch
}

// orderMenu is bare 點餐: the active vendor's categories for the open slot,
// food first.
func (e *Engine) orderMenu(ctx context.Context, _ Event, _ []string) (Reply, error) {
	win := e.Window.Resolve(e.Clock.Now())
	if !win.Open {
		return Reply{Text: lang.T("window_closed"), Err: services.ErrOrderWindowClosed}, nil
	}
	for _, kind := range []models.VendorKind{models.KindFood, models.KindDrink} {
		v, ok, err := e.Registry.Get(ctx, win.Date, win.Slot, kind)
		if err != nil {
			return Reply{}, err
		}
		if ok {
			return e.categoryReply(ctx, v, 1)
		}
	}
	return Reply{Text: lang.T("vendor_not_configured_any", services.SlotLabel(win.Slot)), Err: services.ErrVendorNotConfigured}, nil
}

func (e *Engine) setFoodVendor(ctx context.Context, ev Event, args []string) (Reply, error) {
	return e.setVendor(ctx, ev, args, models.KindFood)
}

func (e *Engine) setDrinkVendor(ctx context.Context, ev Event, args []string) (Reply, error) {
	return e.setVendor(ctx, ev, args, models.KindDrink)
}

// setVendor handles "今日餐廳 <vendor> <slot>"; vendor names may contain spaces.
func (e *Engine) setVendor(ctx context.Context, ev Event, args []string, kind models.VendorKind) (Reply, error) {
	if !e.IsAdmin(ev.UserID) {
		return Reply{Text: lang.T("not_admin")}, nil
	}
	if len(args) < 2 {
		return Reply{Text: lang.T("set_" + string(kind) + "_usage"), Err: services.ErrInvalidSelection}, nil
	}
	slot, ok := services.ParseSlot(args[len(args)-1])
	if !ok {
		return Reply{Text: lang.T("slot_invalid"), Err: services.ErrInvalidSelection}, nil
	}
	ref := strings.Join(args[:len(args)-1], " ")
	v, err := services.ResolveVendor(ctx, e.Catalog, ref)
	if errors.Is(err, services.ErrNotFound) {
		key := "vendor_not_found"
		if kind == models.KindDrink {
			key = "drink_not_found"
		}
		return Reply{Text: lang.T(key, ref), Err: err}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	if v.Kind != kind {
		return Reply{Text: lang.T("vendor_is_"+string(v.Kind), v.Name), Err: services.ErrVendorKindMismatch}, nil
	}

	date := e.Window.Today(e.Clock.Now())
	if kind == models.KindFood {
		err = e.Registry.SetFoodVendor(ctx, date, slot, v.ID)
	} else {
		err = e.Registry.SetDrinkVendor(ctx, date, slot, v.ID)
	}
	if err != nil {
		return Reply{}, err
	}
	logf(ctx, "vendor of the day: %s %s %s = %s (by %s)", date, slot, kind, v.Code, ev.UserID)
	return Reply{Text: lang.T(string(kind)+"_vendor_set", services.SlotLabel(slot), v.Name)}, nil
}

func (e *Engine) randomFood(ctx context.Context, ev Event, args []string) (Reply, error) {
	return e.randomVendor(ctx, ev, args, models.KindFood)
}

func (e *Engine) randomDrink(ctx context.Context, ev Event, args []string) (Reply, error) {
	return e.randomVendor(ctx, ev, args, models.KindDrink)
}

func (e *Engine) randomVendor(ctx context.Context, ev Event, args []string, kind models.VendorKind) (Reply, error) {
	if !e.IsAdmin(ev.UserID) {
		return Reply{Text: lang.T("not_admin")}, nil
	}
	if len(args) != 1 {
		return Reply{Text: lang.T("random_" + string(kind) + "_usage"), Err: services.ErrInvalidSelection}, nil
	}
	slot, ok := services.ParseSlot(args[0])
	if !ok {
		return Reply{Text: lang.T("slot_invalid"), Err: services.ErrInvalidSelection}, nil
	}
	date := e.Window.Today(e.Clock.Now())
	v, err := e.Registry.PickAndSet(ctx, date, slot, kind)
	if errors.Is(err, services.ErrNoVendorsAvailable) {
		return Reply{Text: lang.T("no_" + string(kind) + "_vendors"), Err: err}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: lang.T("random_"+string(kind)+"_set", services.SlotLabel(slot), v.Name)}, nil
}

func (e *Engine) listFoodVendors(ctx context.Context, _ Event, args []string) (Reply, error) {
	return e.listVendors(ctx, args, models.KindFood, "餐廳")
}

func (e *Engine) listDrinkVendors(ctx context.Context, _ Event, args []string) (Reply, error) {
	return e.listVendors(ctx, args, models.KindDrink, "飲料")
}

func (e *Engine) listVendors(ctx context.Context, args []string, kind models.VendorKind, cmd string) (Reply, error) {
	page, _, ok := pageArg(args)
	if !ok {
		return Reply{Text: lang.T("page_out_of_range", page), Err: services.ErrInvalidSelection}, nil
	}
	vendors, err := e.Catalog.ListVendors(ctx, kind)
	if err != nil {
		return Reply{}, err
	}
	if len(vendors) == 0 {
		return Reply{Text: lang.T("no_" + string(kind) + "_vendors"), Err: services.ErrNoVendorsAvailable}, nil
	}
	shown, more := services.Paginate(vendors, page, e.PageSize)
	if len(shown) == 0 {
		return Reply{Text: lang.T("page_out_of_range", page), Err: services.ErrInvalidSelection}, nil
	}
	r := Reply{Text: lang.T("choose_"+string(kind)+"_vendor", page)}
	for _, v := range shown {
		r.Options = append(r.Options, Option{Label: services.SafeLabel(v.Name), Payload: "菜單 " + v.Code})
	}
	if more {
		r.Options = append(r.Options, nextPage(cmd, page))
	}
	return r, nil
}

// browseMenu handles "菜單 <vendor> [category] [page=N]".
func (e *Engine) browseMenu(ctx context.Context, _ Event, args []string) (Reply, error) {
	page, args, ok := pageArg(args)
	if !ok {
		return Reply{Text: lang.T("page_out_of_range", page), Err: services.ErrInvalidSelection}, nil
	}
	if len(args) == 0 {
		return Reply{Text: lang.T("menu_usage"), Err: services.ErrInvalidSelection}, nil
	}
	v, err := services.ResolveVendor(ctx, e.Catalog, args[0])
	if errors.Is(err, services.ErrNotFound) {
		return Reply{Text: lang.T("vendor_not_found", args[0]), Err: err}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	if len(args) == 1 {
		return e.categoryReply(ctx, v, page)
	}
	name := strings.Join(args[1:], " ")
	cat, err := e.Catalog.CategoryByName(ctx, v.ID, name)
	if errors.Is(err, services.ErrNotFound) {
		return Reply{Text: lang.T("category_not_found", name), Err: err}, nil
	}
	if err != nil {
		return Reply{}, err
	}
	return e.itemReply(ctx, v, cat, page)
}

func (e *Engine) categoryReply(ctx context.Context, v *models.Vendor, page int) (Reply, error) {
	cats, err := e.Catalog.ListCategories(ctx, v.ID)
	if err != nil {
		return Reply{}, err
	}
	if len(cats) == 0 {
		return Reply{Text: lang.T("no_menu", v.Name)}, nil
	}
	shown, more := services.Paginate(cats, page, e.PageSize)
	if len(shown) == 0 {
		return Reply{Text: lang.T("page_out_of_range", page), Err: services.ErrInvalidSelection}, nil
	}
	r := Reply{Text: lang.T("choose_category", v.Name, page)}
	for _, c := range shown {
		r.Options = append(r.Options, Option{Label: services.SafeLabel(c.Name), Payload: "菜單 " + v.Code + " " + c.Name})
	}
	if more {
		r.Options = append(r.Options, nextPage("菜單 "+v.Code, page))
	}
	return r, nil
}

func (e *Engine) itemReply(ctx context.Context, v *models.Vendor, cat *models.MenuCategory, page int) (Reply, error) {
	items, err := e.Catalog.ListItems(ctx, cat.ID)
	if err != nil {
		return Reply{}, err
	}
	if len(items) == 0 {
		return Reply{Text: lang.T("no_items", v.Name, cat.Name)}, nil
	}
	shown, more := services.Paginate(items, page, e.PageSize)
	if len(shown) == 0 {
		return Reply{Text: lang.T("page_out_of_range", page), Err: services.ErrInvalidSelection}, nil
	}
	r := Reply{Text: lang.T("choose_item", v.Name, cat.Name, page)}
	for _, it := range shown {
		label := it.Code + " " + it.Name + " $" + strconv.FormatInt(it.Price, 10)
		r.Options = append(r.Options, Option{Label: services.SafeLabel(label), Payload: "點餐 " + it.Code})
	}
	if more {
		r.Options = append(r.Options, nextPage("菜單 "+v.Code+" "+cat.Name, page))
	}
	return r, nil
}

func nextPage(cmd string, page int) Option {
	return Option{Label: lang.T("next_page"), Payload: cmd + " page=" + strconv.Itoa(page+1)}
}

// pageArg strips a trailing "page=N". ok is false when N is not a positive number.
func pageArg(args []string) (page int, rest []string, ok bool) {
	if len(args) == 0 {
		return 1, args, true
	}
	last := args[len(args)-1]
	v, found := strings.CutPrefix(last, "page=")
	if !found {
		return 1, args, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return n, args[:len(args)-1], false
	}
	return n, args[:len(args)-1], true
}

func (e *Engine) lunchReport(ctx context.Context, _ Event, _ []string) (Reply, error) {
	return e.report(ctx, models.SlotLunch, "")
}

func (e *Engine) dinnerReport(ctx context.Context, _ Event, _ []string) (Reply, error) {
	return e.report(ctx, models.SlotDinner, "")
}

func (e *Engine) foodReport(ctx context.Context, _ Event, _ []string) (Reply, error) {
	return e.report(ctx, e.Window.ReportSlot(e.Clock.Now()), models.KindFood)
}

func (e *Engine) drinkReport(ctx context.Context, _ Event, _ []string) (Reply, error) {
	return e.report(ctx, e.Window.ReportSlot(e.Clock.Now()), models.KindDrink)
}

func (e *Engine) report(ctx context.Context, slot models.MealSlot, kind models.VendorKind) (Reply, error) {
	date := e.Window.Today(e.Clock.Now())
	rep, err := e.Reporter.Report(ctx, date, slot, kind)
	if err != nil {
		return Reply{}, err
	}
	r := Reply{Text: rep.Text()}
	if rep.Status == services.ReportVendorNotConfigured {
		r.Err = services.ErrVendorNotConfigured
	}
	return r, nil
}

func (e *Engine) spendReport(ctx context.Context, _ Event, _ []string) (Reply, error) {
	now := e.Clock.Now()
	sp, err := e.Reporter.Spend(ctx, e.Window.Today(now), e.Window.ReportSlot(now))
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: sp.Text()}, nil
}

func (e *Engine) help(context.Context, Event, []string) (Reply, error) {
	return Reply{Text: lang.T("help")}, nil
}
