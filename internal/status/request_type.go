package status

import "strings"

// Типы заявок. Чисто презентационная группировка, переходов у типов нет.
const (
	TypeOnline   = "online"
	TypeOffline  = "offline"
	TypeWithLink = "with_link"
	TypeManual   = "manual"
)

var typeText = map[string]string{
	TypeOnline:   "Online purchase",
	TypeOffline:  "In-store purchase",
	TypeWithLink: "Link purchase",
	TypeManual:   "Manual request",
}

// with_link намеренно дублирует online: на карточках они выглядят одинаково.
var typeIcon = map[string]string{
	TypeOnline:   "link-outline",
	TypeOffline:  "storefront-outline",
	TypeWithLink: "link-outline",
	TypeManual:   "create-outline",
}

var typeBorderColor = map[string]string{
	TypeOnline:   "#42A5F5",
	TypeOffline:  "#FFA726",
	TypeWithLink: "#42A5F5",
	TypeManual:   "#66BB6A",
}

func TypeText(t string) string {
	if t == "" {
		return UnknownLabel
	}
	if label, ok := typeText[strings.ToLower(t)]; ok {
		return label
	}
	return t
}

func TypeIcon(t string) string {
	if icon, ok := typeIcon[strings.ToLower(t)]; ok {
		return icon
	}
	return "help-outline"
}

func TypeBorderColor(t string) string {
	if c, ok := typeBorderColor[strings.ToLower(t)]; ok {
		return c
	}
	return NeutralColor
}
