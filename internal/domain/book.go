package domain

// Book is a catalog entry that campaigns can be created for.
type Book struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title" validate:"required"`
	Author     string `json:"author,omitempty" yaml:"author"`
	ISBN       string `json:"isbn,omitempty" yaml:"isbn" validate:"omitempty,numeric"`
	FinalPrice int64  `json:"finalPrice" yaml:"finalPrice" validate:"gte=0"`
	CoverLink  string `json:"coverLink,omitempty" yaml:"coverLink"`
}

// Snapshot copies the fields a campaign embeds.
func (b *Book) Snapshot() BookSnapshot {
	return BookSnapshot{ID: b.ID, Title: b.Title, ISBN: b.ISBN, FinalPrice: b.FinalPrice}
}
