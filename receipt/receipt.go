// Package receipt renders a finished checkout as plain text.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"deliveryfood/models"
)

type Receipt struct {
	OrderID      uint
	CheckedOutAt time.Time
	Customer     string
	Address      models.Address
	Items        []models.OrderItem
	Subtotal     int64
	DeliveryFee  int64
	Total        int64
}

// FromOrder builds the receipt of a created order.
func FromOrder(o models.Order, customer string) Receipt {
	at := o.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return Receipt{
		OrderID:      o.ID,
		CheckedOutAt: at,
		Customer:     customer,
		Address:      o.DeliveryAddress,
		Items:        o.Items,
		Subtotal:     o.Subtotal,
		DeliveryFee:  o.DeliveryFee,
		Total:        o.TotalPrice,
	}
}

// Money formats whole currency units, e.g. "Rp 105,000".
func Money(v int64) string {
	return "Rp " + humanize.Comma(v)
}

func Render(w io.Writer, r Receipt) error {
	var b strings.Builder
	fmt.Fprintf(&b, "ORDER RECEIPT #%d\n", r.OrderID)
	fmt.Fprintf(&b, "Date:     %s\n", r.CheckedOutAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Customer: %s\n", r.Customer)
	if r.Address.Complete() {
		fmt.Fprintf(&b, "Address:  %s, %s %s (%s)\n", r.Address.Street, r.Address.City, r.Address.PostalCode, r.Address.Phone)
	}
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Item\tQty\tPrice\tTotal\t")
	for _, it := range r.Items {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t\n", it.Name, it.Quantity, Money(it.Price), Money(it.LineTotal))
	}
	fmt.Fprintln(tw, "\t\t\t\t")
	fmt.Fprintf(tw, "Subtotal\t\t\t%s\t\n", Money(r.Subtotal))
	fmt.Fprintf(tw, "Delivery fee\t\t\t%s\t\n", Money(r.DeliveryFee))
	fmt.Fprintf(tw, "TOTAL\t\t\t%s\t\n", Money(r.Total))
	return tw.Flush()
}
