package domain

import "time"

// Item is a category of recyclable material a point accepts.
type Item struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
	Image string `db:"image"`
}

// Point is a registered physical collection location.
type Point struct {
	ID        int64     `db:"id"`
	Image     string    `db:"image"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Phone     string    `db:"phone"`
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
	City      string    `db:"city"`
	UF        string    `db:"uf"`
	CreatedAt time.Time `db:"created_at"`
}

// PointFilter narrows a point listing. Zero-valued fields are ignored; a
// point matches ItemIDs when it accepts at least one of them.
type PointFilter struct {
	UF      string
	City    string
	ItemIDs []int64
}
