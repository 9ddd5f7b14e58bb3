package shapes

import (
	"fmt"
	"io"
	"math"
)

// Shape is anything with an area.
//
//speccheck:type
type Shape interface {
	//speccheck:required
	Area() float64
}

// Base carries the identity shared by all shapes.
type Base struct {
	id int
}

// Circle is a shape with a radius.
//
//speccheck:type checkSuper implements=Shape,fmt.Stringer maxFields=2
type Circle struct {
	Base
	//speccheck:required
	radius float64
	label  string
}

// UnitCircle has radius one.
//
//speccheck:required
var UnitCircle = Circle{radius: 1}

// NewCircle returns a circle of the given radius.
//
//speccheck:required
func NewCircle(radius float64) *Circle {
	return &Circle{radius: radius}
}

// Area returns the area of c.
//
//speccheck:required
func (c *Circle) Area() float64 {
	return math.Pi * c.radius * c.radius
}

// Scale multiplies the radius by f.
//
//speccheck:required
func (c *Circle) Scale(f float64) {
	c.radius *= f
}

//speccheck:required
func (c *Circle) String() string {
	return fmt.Sprintf("circle(%g)", c.radius)
}

// Save writes c to w.
//
//speccheck:required mustThrow=error
func (c *Circle) Save(w io.Writer) (int, error) {
	return fmt.Fprintln(w, c.String())
}

func (c *Circle) diameter() float64 {
	return 2 * c.radius
}

// Foo holds one number.
//
//speccheck:type
type Foo struct {
	//speccheck:required
	a float64
}

//speccheck:required mustThrow=error mustNotThrow=*NotFoundError
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
