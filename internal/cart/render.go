package cart

import (
	"fmt"
	"strings"

	"github.com/vetaris/storefront-golang/internal/models"
)

// EmptyMessage is shown in place of the line list when the cart has no lines.
const EmptyMessage = "Your cart is empty."

// LineView is one rendered cart row.
type LineView struct {
	ProductID    int64  `json:"product_id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	Quantity     int    `json:"quantity"`
	UnitPrice    string `json:"unit_price"`
	LineTotal    string `json:"line_total"`
	Summary      string `json:"summary"`       // "2 x 10.00 ₺"
	RemoveAction string `json:"remove_action"` // POST target that removes one unit
}

// View is the complete cart projection. It is rebuilt from scratch on
// every render and never patched.
type View struct {
	Lines     []LineView `json:"lines"`
	Empty     bool       `json:"empty"`
	Message   string     `json:"message,omitempty"`
	ItemCount int        `json:"item_count"`
	Total     string     `json:"total"`
}

// Render projects cart into a View, formatting money with suffix.
func Render(cart models.Cart, suffix string) View {
	view := View{
		Lines:     make([]LineView, 0, len(cart.Lines)),
		ItemCount: cart.ItemCount(),
		Total:     models.FormatMoney(cart.Total(), suffix),
	}
	if cart.IsEmpty() {
		view.Empty = true
		view.Message = EmptyMessage
		return view
	}

	for _, line := range cart.Lines {
		unit := models.FormatMoney(line.Price, suffix)
		view.Lines = append(view.Lines, LineView{
			ProductID:    line.ProductID,
			Name:         line.Name,
			Image:        line.Image,
			Quantity:     line.Quantity,
			UnitPrice:    unit,
			LineTotal:    models.FormatMoney(line.LineTotal(), suffix),
			Summary:      fmt.Sprintf("%d x %s", line.Quantity, unit),
			RemoveAction: fmt.Sprintf("/cart/items/%d/remove", line.ProductID),
		})
	}
	return view
}

// Text is the plain textual form of the view, one block per line and the
// total last.
func (v View) Text() string {
	var b strings.Builder
	if v.Empty {
		b.WriteString(v.Message)
		b.WriteString("\n")
	}
	for _, line := range v.Lines {
		fmt.Fprintf(&b, "%s\n  %s  %s\n", line.Name, line.Summary, line.LineTotal)
	}
	fmt.Fprintf(&b, "Total: %s", v.Total)
	return b.String()
}

// SummaryLine is a row of the checkout order summary.
type SummaryLine struct {
	Name      string `json:"name"`
	Image     string `json:"image"`
	Pieces    string `json:"pieces"` // "3 pcs"
	LineTotal string `json:"line_total"`
}

// Summary is the read-only order summary shown beside the checkout wizard.
type Summary struct {
	Lines     []SummaryLine `json:"lines"`
	Subtotal  string        `json:"subtotal"`
	Total     string        `json:"total"`
	PayAmount string        `json:"pay_amount"`
}

// RenderSummary projects cart into the checkout summary.
func RenderSummary(cart models.Cart, suffix string) Summary {
	total := models.FormatMoney(cart.Total(), suffix)
	summary := Summary{
		Lines:     make([]SummaryLine, 0, len(cart.Lines)),
		Subtotal:  total,
		Total:     total,
		PayAmount: "(" + total + ")",
	}
	for _, line := range cart.Lines {
		summary.Lines = append(summary.Lines, SummaryLine{
			Name:      line.Name,
			Image:     line.Image,
			Pieces:    fmt.Sprintf("%d pcs", line.Quantity),
			LineTotal: models.FormatMoney(line.LineTotal(), suffix),
		})
	}
	return summary
}
