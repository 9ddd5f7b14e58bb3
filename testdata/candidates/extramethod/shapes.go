package shapes

import (
	"fmt"
	"io"
	"math"
)

// Shape is anything with an area.
type Shape interface {
	Area() float64
}

// Base carries the identity shared by all shapes.
type Base struct {
	id int
}

// Circle is a shape with a radius.
type Circle struct {
	Base
	radius float64
	label  string
}

// UnitCircle has radius one.
var UnitCircle = Circle{radius: 1}

// NewCircle returns a circle of the given radius.
func NewCircle(radius float64) *Circle {
	return &Circle{radius: radius}
}

// Area returns the area of c.
func (c *Circle) Area() float64 {
	return math.Pi * c.radius * c.radius
}

// Scale multiplies the radius by f.
func (c *Circle) Scale(f float64) {
	c.radius *= f
}

func (c *Circle) String() string {
	return fmt.Sprintf("circle(%g)", c.radius)
}

// Save writes c to w.
func (c *Circle) Save(w io.Writer) (int, error) {
	return fmt.Fprintln(w, c.String())
}

func (c *Circle) diameter() float64 {
	return 2 * c.radius
}

// Foo holds one number.
type Foo struct {
	a float64
}

func (f *Foo) foo(n int) (int, error) {
	return n + int(f.a), nil
}

// NotFoundError reports a missing shape.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return "shape " + e.Name + " not found"
}

// Perimeter returns the circumference of c.
func (c *Circle) Perimeter() float64 {
	return 2 * math.Pi * c.radius
}
