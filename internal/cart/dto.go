package cart

import (
	"github.com/google/uuid"

	"github.com/thunww/Furniture-Web-sub002/pkg/db/models"
)

// AddItemInput carries the data needed to add a product to a cart.
type AddItemInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
	VariantID *uuid.UUID
	Quantity  int
}

// UpdateQuantityInput carries a quantity change for an existing line.
type UpdateQuantityInput struct {
	UserID   uuid.UUID
	LineID   uuid.UUID
	Quantity int
}

// LineView is one cart line as returned to clients.
type LineView struct {
	ID             uuid.UUID  `json:"id"`
	ProductID      uuid.UUID  `json:"product_id"`
	VariantID      *uuid.UUID `json:"variant_id,omitempty"`
	ProductName    string     `json:"product_name"`
	UnitPriceCents int        `json:"unit_price_cents"`
	Quantity       int        `json:"quantity"`
	Selected       bool       `json:"selected"`
	SubtotalCents  int        `json:"subtotal_cents"`
}

// ShopGroup is the per-shop slice of a cart, in first-seen line order.
type ShopGroup struct {
	ShopID        uuid.UUID  `json:"shop_id"`
	Lines         []LineView `json:"lines"`
	SubtotalCents int        `json:"subtotal_cents"`
}

// View is the full cart representation grouped by shop.
type View struct {
	CartID                uuid.UUID   `json:"cart_id"`
	Shops                 []ShopGroup `json:"shops"`
	ItemCount             int         `json:"item_count"`
	SelectedSubtotalCents int         `json:"selected_subtotal_cents"`
}

// BuildView groups cart lines by shop, preserving the order in which each
// shop first appears among the lines.
func BuildView(cart *models.Cart) *View {
	view := &View{CartID: cart.ID, Shops: []ShopGroup{}}
	index := map[uuid.UUID]int{}
	for _, line := range cart.Lines {
		pos, ok := index[line.ShopID]
		if !ok {
			pos = len(view.Shops)
			index[line.ShopID] = pos
			view.Shops = append(view.Shops, ShopGroup{ShopID: line.ShopID})
		}
		group := &view.Shops[pos]
		group.Lines = append(group.Lines, LineView{
			ID:             line.ID,
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			ProductName:    line.ProductName,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
			Selected:       line.Selected,
			SubtotalCents:  line.SubtotalCents(),
		})
		group.SubtotalCents += line.SubtotalCents()
		view.ItemCount += line.Quantity
		if line.Selected {
			view.SelectedSubtotalCents += line.SubtotalCents()
		}
	}
	return view
}
