package models

type Person struct {
	ID       string `json:"id" yaml:"id"`
	FullName string `json:"fullName" yaml:"full_name"`
	Initials string `json:"initials" yaml:"initials"` // 2-3 characters
	Color    string `json:"color,omitempty" yaml:"color"`
	Location string `json:"location,omitempty" yaml:"location"`
	Active   bool   `json:"-" yaml:"active"`

	// TextColor is derived from Color when served, never stored.
	TextColor string `json:"textColor,omitempty" yaml:"-"`
}
