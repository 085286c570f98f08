package testutil

import (
	"reflect"
	"time"

	"github.com/roach88/exprql/internal/entity"
	"github.com/roach88/exprql/internal/expr"
)

// Cat is the entity most tests query.
//
// Name, Age and Alive have accessors; Weight and Birth are reachable only
// as fields. Anything else resolves through dynamic property access.
type Cat struct {
	Name   string
	Age    int32
	Weight float64
	Alive  bool
	Birth  time.Time
}

func (c *Cat) GetName() string { return c.Name }
func (c *Cat) GetAge() int32   { return c.Age }
func (c *Cat) IsAlive() bool   { return c.Alive }

// Person is a second entity for joins and projections.
type Person struct {
	Name string
	Age  int32
}

func (p *Person) GetName() string { return p.Name }
func (p *Person) GetAge() int32   { return p.Age }

// PersonDTO is a projection target.
type PersonDTO struct {
	Name string
	Age  int32
}

var (
	CatType       = entity.MustTypeOf(reflect.TypeOf(Cat{})).WithTable("cat")
	PersonType    = entity.MustTypeOf(reflect.TypeOf(Person{})).WithTable("person")
	PersonDTOType = entity.MustTypeOf(reflect.TypeOf(PersonDTO{}))
)

// CatPath returns a root variable over Cat.
func CatPath(alias string) *expr.Path { return expr.Root(CatType, alias) }

// PersonPath returns a root variable over Person.
func PersonPath(alias string) *expr.Path { return expr.Root(PersonType, alias) }

// PersonDTOProjection projects name and age of p into a PersonDTO.
func PersonDTOProjection(p expr.Expression) *expr.Projection {
	construct, err := entity.Constructor(reflect.TypeOf(&PersonDTO{}))
	if err != nil {
		panic(err)
	}
	return expr.MustProjection(PersonDTOType, construct,
		expr.Property(p, "name", expr.String),
		expr.Property(p, "age", expr.Integer),
	)
}

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }
