package status

import "strings"

// Статусы заявок/заказов (закрытое множество, приходит с бэкенда строками).
const (
	Pending    = "pending"
	Processing = "processing"
	Quoted     = "quoted"
	Confirmed  = "confirmed"
	Paid       = "paid"
	Shipping   = "shipping"
	Delivered  = "delivered"
	Completed  = "completed"
	Cancelled  = "cancelled"
	Rejected   = "rejected"
)

const (
	UnknownLabel = "Unknown"
	NeutralColor = "#999999"
)

var statusText = map[string]string{
	Pending:    "Pending review",
	Processing: "Processing",
	Quoted:     "Quoted",
	Confirmed:  "Confirmed",
	Paid:       "Paid",
	Shipping:   "Shipping",
	Delivered:  "Delivered",
	Completed:  "Completed",
	Cancelled:  "Cancelled",
	Rejected:   "Rejected",
}

var statusColor = map[string]string{
	Pending:    "#FFA726",
	Processing: "#42A5F5",
	Quoted:     "#AB47BC",
	Confirmed:  "#26C6DA",
	Paid:       "#66BB6A",
	Shipping:   "#29B6F6",
	Delivered:  "#26A69A",
	Completed:  "#4CAF50",
	Cancelled:  "#EF5350",
	Rejected:   "#E53935",
}

// Text возвращает отображаемую подпись статуса.
// Пустой вход -> "Unknown"; незнакомый (но непустой) статус отдаём как есть,
// чтобы новые бэкендовые статусы деградировали до сырой строки, а не до "Unknown".
func Text(status string) string {
	if status == "" {
		return UnknownLabel
	}
	s := strings.ToLower(status)
	if label, ok := statusText[s]; ok {
		return label
	}
	return status
}

// Color возвращает hex-цвет статуса. В отличие от Text, незнакомый статус
// падает в нейтральный серый — асимметрия намеренная.
func Color(status string) string {
	if status == "" {
		return NeutralColor
	}
	if c, ok := statusColor[strings.ToLower(status)]; ok {
		return c
	}
	return NeutralColor
}

var editable = map[string]struct{}{
	Pending:    {},
	Processing: {},
}

var cancellable = map[string]struct{}{
	Pending:    {},
	Processing: {},
	Quoted:     {},
}

var payable = map[string]struct{}{
	Quoted: {},
}

var quotationVisible = map[string]struct{}{
	Quoted:    {},
	Confirmed: {},
	Paid:      {},
	Shipping:  {},
	Delivered: {},
	Completed: {},
}

func CanEdit(status string) bool {
	_, ok := editable[strings.ToLower(status)]
	return ok
}

func CanCancel(status string) bool {
	_, ok := cancellable[strings.ToLower(status)]
	return ok
}

func CanPay(status string) bool {
	_, ok := payable[strings.ToLower(status)]
	return ok
}

func ShowQuotation(status string) bool {
	_, ok := quotationVisible[strings.ToLower(status)]
	return ok
}

// transitions — справочная таблица переходов. Переходы реально выполняет бэкенд;
// здесь она используется только для отображения (клиент ничего не запрещает).
var transitions = map[string][]string{
	Pending:    {Processing, Cancelled},
	Processing: {Quoted, Rejected, Cancelled},
	Quoted:     {Confirmed, Paid, Cancelled},
	Confirmed:  {Paid, Cancelled},
	Paid:       {Shipping},
	Shipping:   {Delivered},
	Delivered:  {Completed},
	Completed:  {},
	Cancelled:  {},
	Rejected:   {},
}

// NextPossible возвращает множество статусов, достижимых за один шаг.
// Для терминальных и незнакомых статусов — пустой срез.
func NextPossible(current string) []string {
	next, ok := transitions[strings.ToLower(current)]
	if !ok {
		return []string{}
	}
	out := make([]string, len(next))
	copy(out, next)
	return out
}
