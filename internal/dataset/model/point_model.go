package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"percept/pkg/math/vector"
)

// Category is one of the two symbolic classes a point can carry.
type Category int8

const (
	Positive Category = 1
	Negative Category = -1
)

func (c Category) Valid() bool {
	return c == Positive || c == Negative
}

func (c Category) String() string {
	switch c {
	case Positive:
		return "+1"
	case Negative:
		return "-1"
	default:
		return fmt.Sprintf("Category(%d)", int8(c))
	}
}

func NewPoint(vec vector.V, label Category) Point {
	return Point{
		ID:        uuid.New(),
		Vec:       vec,
		Label:     label,
		CreatedAt: time.Now(),
	}
}

// Point is a labeled 2-D training sample. Never mutated after creation.
type Point struct {
	ID        uuid.UUID `json:"id"`
	Vec       vector.V  `json:"vec"`
	Label     Category  `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

func (p Point) X() float64 {
	return p.Vec.Point(0)
}

func (p Point) Y() float64 {
	return p.Vec.Point(1)
}
