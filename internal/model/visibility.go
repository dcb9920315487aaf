package model

// Visibility selects which Tag Index namespace a tag is routed through.
type Visibility int

const (
	Private Visibility = iota
	Public
)

func (v Visibility) String() string {
	if v == Public {
		return "public"
	}
	return "private"
}
