package draft

// Validate decides submit-eligibility for a draft. Rules run in order and
// the first violated rule wins; nil means the draft may be submitted.
// Validation is pure: it never mutates the draft.
func Validate(d *Draft) error {
	if d.TrimmedOrderNumber() == "" {
		return ErrEmptyOrderNumber
	}
	if d.Len() == 0 {
		return ErrNoLineItems
	}
	// The editor refuses quantities below 1 at commit, so this cannot
	// trigger through normal flows. Classified anyway in case a draft was
	// built some other way.
	for _, li := range d.Items() {
		if li.Qty < 1 {
			return &InvalidQuantityError{ProductID: li.Product.ID, Qty: li.Qty}
		}
	}
	return nil
}
