package domain

// OverlayProfile returns current with every non-nil field of o replacing the
// stored value. Fields outside the closed set cannot be expressed in o and
// so are never merged.
func OverlayProfile(current ProfileDetails, o ProfileOverlay) ProfileDetails {
	next := current
	if o.Bio != nil {
		next.Bio = *o.Bio
	}
	if o.Phone != nil {
		next.Phone = *o.Phone
	}
	if o.Location != nil {
		next.Location = *o.Location
	}
	return next
}
