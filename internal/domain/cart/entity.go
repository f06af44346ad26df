package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrNegativePrice   = errors.New("price cannot be negative")
	ErrEmptyTitle      = errors.New("title snapshot is required")
)

// Line is one pending item in a cart. Title and price are snapshots taken at
// add-to-cart time; checkout recomputes against live inventory prices.
type Line struct {
	ProductID      uuid.UUID
	Title          string
	UnitPriceCents int64
	Quantity       int32
}

// Cart holds pending items for one (buyer, seller) pair. It is only ever
// mutated from the buyer's own session.
type Cart struct {
	buyerID   uuid.UUID
	sellerID  uuid.UUID
	lines     []Line
	createdAt time.Time
	updatedAt time.Time
}

func NewCart(buyerID, sellerID uuid.UUID, now time.Time) *Cart {
	return &Cart{
		buyerID:   buyerID,
		sellerID:  sellerID,
		createdAt: now,
		updatedAt: now,
	}
}

func Reconstruct(buyerID, sellerID uuid.UUID, lines []Line, createdAt, updatedAt time.Time) *Cart {
	return &Cart{
		buyerID:   buyerID,
		sellerID:  sellerID,
		lines:     lines,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// AddLine appends a line, merging quantities when the product is already in the
// cart. Insertion order of distinct products is preserved.
func (c *Cart) AddLine(productID uuid.UUID, title string, unitPriceCents int64, quantity int32, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if unitPriceCents < 0 {
		return ErrNegativePrice
	}
	if title == "" {
		return ErrEmptyTitle
	}

	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines[i].Quantity += quantity
			c.lines[i].Title = title
			c.lines[i].UnitPriceCents = unitPriceCents
			c.updatedAt = now
			return nil
		}
	}

	c.lines = append(c.lines, Line{
		ProductID:      productID,
		Title:          title,
		UnitPriceCents: unitPriceCents,
		Quantity:       quantity,
	})
	c.updatedAt = now
	return nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) BuyerID() uuid.UUID { return c.buyerID }
func (c *Cart) SellerID() uuid.UUID { return c.sellerID }
func (c *Cart) CreatedAt() time.Time { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }
