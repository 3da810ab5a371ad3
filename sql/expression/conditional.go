package expression

import (
	"fmt"

	"github.com/milaboratory/ptabler/sql"
	"github.com/milaboratory/ptabler/value"
)

// WhenThen is one branch of a when_then_otherwise ladder.
type WhenThen struct {
	When sql.Expression
	Then sql.Expression
}

// Conditional implements `when_then_otherwise`: the first branch whose
// When evaluates true wins; if none match, Otherwise is evaluated (§3).
type Conditional struct {
	Branches  []WhenThen
	Otherwise sql.Expression
}

// NewConditional validates the non-empty-conditions invariant (§3) and
// constructs the expression.
func NewConditional(branches []WhenThen, otherwise sql.Expression) (*Conditional, error) {
	if len(branches) == 0 {
		return nil, sql.ErrInvalidExpression.New("when_then_otherwise", "'conditions' must be non-empty")
	}
	return &Conditional{Branches: branches, Otherwise: otherwise}, nil
}

func (c *Conditional) Type() value.Type { return c.Otherwise.Type() }

func (c *Conditional) Children() []sql.Expression {
	children := make([]sql.Expression, 0, len(c.Branches)*2+1)
	for _, b := range c.Branches {
		children = append(children, b.When, b.Then)
	}
	return append(children, c.Otherwise)
}

func (c *Conditional) WithChildren(children ...sql.Expression) (sql.Expression, error) {
	if len(children) != len(c.Branches)*2+1 {
		return nil, sql.ErrWrongChildCount.New("when_then_otherwise", len(c.Branches)*2+1, len(children))
	}
	branches := make([]WhenThen, len(c.Branches))
	for i := range branches {
		branches[i] = WhenThen{When: children[2*i], Then: children[2*i+1]}
	}
	return &Conditional{Branches: branches, Otherwise: children[len(children)-1]}, nil
}

func (c *Conditional) String() string {
	return fmt.Sprintf("when_then_otherwise(%d branches)", len(c.Branches))
}

func (c *Conditional) Eval(ctx *sql.Context, row sql.Row) (interface{}, error) {
	for _, branch := range c.Branches {
		cond, err := branch.When.Eval(ctx, row)
		if err != nil {
			return nil, err
		}
		if cond == nil {
			continue
		}
		matched, ok, err := value.AsBool(cond)
		if err != nil {
			return nil, sql.ErrTypeMismatch.New("when_then_otherwise", err.Error())
		}
		if ok && matched {
			return branch.Then.Eval(ctx, row)
		}
	}
	return c.Otherwise.Eval(ctx, row)
}
