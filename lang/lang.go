// Package lang holds the user-facing message catalogue (Traditional Chinese).
package lang

import "fmt"

var messages = map[string]string{
	"unknown_command": "無法識別指令：%s",
	"generic_failure": "系統忙碌中，請稍後再試。",
	"help": "可用指令：\n" +
		"吃啥 / 喝啥：今日菜單\n" +
		"點餐 品項或代碼：開始點餐\n" +
		"餐廳 / 飲料：店家清單\n" +
		"菜單 店家 [分類]：瀏覽菜單\n" +
		"今日餐廳 店家 中餐/晚餐、今日飲料 店家 中餐/晚餐：設定今日店家\n" +
		"隨便吃 / 隨便喝 午餐/晚餐：隨機選擇\n" +
		"今日午餐統計 / 今日晚餐統計 / 餐點 統計 / 飲料 統計 / 今日消費明細",
	"next_page": "下一頁",

	// ordering window
	"window_closed":        "目前已超過所有點餐截止時間。",
	"window_closed_commit": "%s點餐已截止，本次點餐未登記。",

	// item pick
	"vendor_not_configured_any": "請先設定今日%s餐廳或飲料店。",
	"item_not_found":            "找不到品項：%s",
	"item_not_today":            "%s 不是今日%s店家的品項。",
	"choose_sweetness":          "%s %s $%d\n請選擇甜度",
	"choose_ice":                "甜度%s\n請選擇冰塊",
	"choose_quantity_food":      "%s %s $%d\n請選擇份數（1~%d）",
	"choose_quantity_drink":     "甜度%s、冰塊%s\n請選擇杯數（1~%d）",
	"quantity_unit_food":        "%d份",
	"quantity_unit_drink":       "%d杯",
	"sweetness_label":           "甜度%s",
	"ice_label":                 "冰塊%s",
	"invalid_sweetness":         "「%s」不是可選的甜度，請重新選擇。",
	"invalid_ice":               "「%s」不是可選的冰塊，請重新選擇。",
	"invalid_quantity":          "請輸入正確的數量（1~%d）。",
	"no_pending":                "目前沒有進行中的點餐，請先輸入：點餐 品項",

	// commit
	"vendor_changed":  "今日%s的店家已更換，本次點餐未登記，請重新點餐。",
	"item_removed":    "品項 %s 已不在菜單中，本次點餐未登記。",
	"order_confirmed": "已為你登記：%s %s x%d（%s）\n單價 $%d，小計 $%d",
	"order_note":      "\n%s",

	// vendor of the day
	"not_admin":           "只有管理員可以設定今日店家。",
	"slot_invalid":        "餐別請輸入『中餐』或『晚餐』",
	"set_food_usage":      "請輸入：今日餐廳 餐廳名稱 中餐/晚餐",
	"set_drink_usage":     "請輸入：今日飲料 飲料店名稱 中餐/晚餐",
	"vendor_not_found":    "找不到餐廳：%s",
	"drink_not_found":     "找不到飲料店：%s",
	"vendor_is_drink":     "%s 是飲料店，請用『今日飲料』設定飲料店。",
	"vendor_is_food":      "%s 不是飲料店，請用『今日餐廳』設定一般餐廳",
	"food_vendor_set":     "今日%s已設定為：%s",
	"drink_vendor_set":    "今日%s已設定為飲料店：%s",
	"random_food_usage":   "請輸入：隨便吃 午餐/晚餐",
	"random_drink_usage":  "請輸入：隨便喝 午餐/晚餐",
	"random_food_set":     "今日%s已隨機選擇：%s",
	"random_drink_set":    "今日%s已隨機選擇飲料店：%s",
	"no_food_vendors":     "目前沒有餐廳資料。",
	"no_drink_vendors":    "目前沒有飲料店資料。",
	"food_not_set_today":  "今日尚未設定餐廳。",
	"drink_not_set_today": "今日尚未設定飲料店。",

	// browsing
	"choose_food_vendor":  "請選擇餐廳（第%d頁）：",
	"choose_drink_vendor": "請選擇飲料店（第%d頁）：",
	"choose_category":     "請選擇 %s 的分類（第%d頁）：",
	"choose_item":         "請選擇 %s【%s】的品項（第%d頁）：",
	"no_menu":             "%s 尚無菜單資料。",
	"category_not_found":  "找不到分類：%s",
	"no_items":            "%s【%s】尚無品項。",
	"menu_usage":          "請輸入：菜單 餐廳名稱",
	"page_out_of_range":   "沒有第%d頁。",

	// reports
	"report_header":         "今日%s %s統計：",
	"report_no_records":     "今日%s %s尚無點餐紀錄。",
	"report_not_configured": "今日%s尚未設定%s。",
	"report_total":          "總金額：$%d",
	"unknown_user":          "(未知)",
	"spend_header":          "今日%s消費明細：",
	"spend_empty":           "今日尚無點餐紀錄。",

	// labels
	"slot_lunch":   "中餐",
	"slot_dinner":  "晚餐",
	"kind_food":    "餐點",
	"kind_drink":   "飲料",
	"kind_all":     "餐點與飲料",
	"vendor_food":  "餐廳",
	"vendor_drink": "飲料店",
	"vendor_any":   "餐廳或飲料店",
}

// T returns the message for key formatted with args. Unknown keys come back as the key itself.
func T(key string, args ...interface{}) string {
	s, ok := messages[key]
	if !ok {
		s = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(s, args...)
	}
	return s
}
