package settings

import (
	"context"
	"strconv"

	"github.com/lumeno/accounts/internal/store"
)

// Notifications are per-channel delivery switches. Absent records read as
// the documented defaults: email on, sms and push off.
type Notifications struct {
	Email bool `json:"email"`
	SMS   bool `json:"sms"`
	Push  bool `json:"push"`
}

// Billing is the stored payment profile. Only the last four digits of a
// card ever reach the store; the full number and CVV are validated and
// discarded.
type Billing struct {
	CardLast4      string `json:"card_last4"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    string `json:"expiry_month"`
	ExpiryYear     string `json:"expiry_year"`
	InvoiceEmail   string `json:"invoice_email"`
}

// Plan is the selected subscription: a plan name, two add-on switches and
// the price last charged for the combination.
type Plan struct {
	Name                 string  `json:"plan_name"`
	AddonPrioritySupport bool    `json:"addon_priority_support"`
	AddonExtraStorage    bool    `json:"addon_extra_storage"`
	LastChargedPrice     float64 `json:"last_charged_price"`
}

// Repository reads and writes the three settings records. Each record
// shares the account's normalized email but has its own key and lifecycle;
// none needs the account record to exist.
type Repository struct {
	store store.Hash
}

func NewRepository(s store.Hash) *Repository {
	return &Repository{store: s}
}

// GetNotifications returns the stored switches, or the defaults when no
// record exists yet.
func (r *Repository) GetNotifications(ctx context.Context, email string) (*Notifications, error) {
	fields, err := r.store.GetAll(ctx, store.NotificationsKey(email))
	if err != nil {
		return nil, err
	}
	n := &Notifications{Email: true}
	if len(fields) == 0 {
		return n, nil
	}
	n.Email = parseBool(fields["email"], true)
	n.SMS = parseBool(fields["sms"], false)
	n.Push = parseBool(fields["push"], false)
	return n, nil
}

// PutNotifications overwrites all three switches in one record merge.
func (r *Repository) PutNotifications(ctx context.Context, email string, n *Notifications) error {
	return r.store.SetFields(ctx, store.NotificationsKey(email), map[string]string{
		"email": strconv.FormatBool(n.Email),
		"sms":   strconv.FormatBool(n.SMS),
		"push":  strconv.FormatBool(n.Push),
	})
}

// GetBilling returns the stored payment profile, empty when absent.
func (r *Repository) GetBilling(ctx context.Context, email string) (*Billing, error) {
	fields, err := r.store.GetAll(ctx, store.BillingKey(email))
	if err != nil {
		return nil, err
	}
	return &Billing{
		CardLast4:      fields["card_last4"],
		CardholderName: fields["cardholder_name"],
		ExpiryMonth:    fields["expiry_month"],
		ExpiryYear:     fields["expiry_year"],
		InvoiceEmail:   fields["invoice_email"],
	}, nil
}

// PutBilling merges the supplied fields into the billing record. Empty
// fields are skipped so an invoice-email-only update leaves the card
// profile untouched.
func (r *Repository) PutBilling(ctx context.Context, email string, b *Billing) error {
	fields := map[string]string{}
	if b.CardLast4 != "" {
		fields["card_last4"] = b.CardLast4
	}
	if b.CardholderName != "" {
		fields["cardholder_name"] = b.CardholderName
	}
	if b.ExpiryMonth != "" {
		fields["expiry_month"] = b.ExpiryMonth
	}
	if b.ExpiryYear != "" {
		fields["expiry_year"] = b.ExpiryYear
	}
	if b.InvoiceEmail != "" {
		fields["invoice_email"] = b.InvoiceEmail
	}
	if len(fields) == 0 {
		return nil
	}
	return r.store.SetFields(ctx, store.BillingKey(email), fields)
}

// HasCardOnFile reports whether a card fingerprint is stored for email.
func (r *Repository) HasCardOnFile(ctx context.Context, email string) (bool, error) {
	b, err := r.GetBilling(ctx, email)
	if err != nil {
		return false, err
	}
	return b.CardLast4 != "", nil
}

// GetPlan returns the stored plan selection, zero-valued when absent.
func (r *Repository) GetPlan(ctx context.Context, email string) (*Plan, error) {
	fields, err := r.store.GetAll(ctx, store.PlansKey(email))
	if err != nil {
		return nil, err
	}
	price, _ := strconv.ParseFloat(fields["last_charged_price"], 64)
	return &Plan{
		Name:                 fields["plan_name"],
		AddonPrioritySupport: parseBool(fields["addon_priority_support"], false),
		AddonExtraStorage:    parseBool(fields["addon_extra_storage"], false),
		LastChargedPrice:     price,
	}, nil
}

// PutPlan overwrites the plan record.
func (r *Repository) PutPlan(ctx context.Context, email string, p *Plan) error {
	return r.store.SetFields(ctx, store.PlansKey(email), map[string]string{
		"plan_name":              p.Name,
		"addon_priority_support": strconv.FormatBool(p.AddonPrioritySupport),
		"addon_extra_storage":    strconv.FormatBool(p.AddonExtraStorage),
		"last_charged_price":     strconv.FormatFloat(p.LastChargedPrice, 'f', 2, 64),
	})
}

// parseBool tolerates the "1"/"0" flags older records carry alongside
// "true"/"false"; anything unparsable falls back to def.
func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
