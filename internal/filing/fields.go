package filing

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/ncparse/internal/datetime"
	"github.com/dgallion1/ncparse/internal/grammar"
	"github.com/dgallion1/ncparse/internal/sgml"
)

// fields routes the children of one block into typed destinations. Values
// that cannot be stored are kept in the owner's overflow under their tag
// path so nothing is lost.
type fields struct {
	m        *mapper
	prefix   string
	overflow *map[string][]string
	sections *[]Section
}

func (m *mapper) fieldsFor(overflow *map[string][]string, sections *[]Section) fields {
	return fields{m: m, overflow: overflow, sections: sections}
}

// within returns fields for a nested block, keeping the same owner.
func (f fields) within(tag string) fields {
	f.prefix += tag + "/"
	return f
}

func (f fields) path(n *sgml.Node) string {
	return f.prefix + n.Tag
}

func (f fields) keep(n *sgml.Node) {
	if *f.overflow == nil {
		*f.overflow = make(map[string][]string)
	}
	key := f.path(n)
	(*f.overflow)[key] = append((*f.overflow)[key], n.Value)
}

// unknown preserves a tag the model has no field for.
func (f fields) unknown(n *sgml.Node) {
	if n.Kind != grammar.Value || len(n.Children) > 0 {
		*f.sections = append(*f.sections, sectionOf(n))
		f.m.anomaly(AnomalyUnknownBlock, n, f.path(n))
		return
	}
	f.keep(n)
	f.m.anomaly(AnomalyUnknownField, n, f.path(n))
}

func (f fields) duplicate(n *sgml.Node) {
	if n.Kind == grammar.Value && len(n.Children) == 0 {
		f.keep(n)
	} else {
		*f.sections = append(*f.sections, sectionOf(n))
	}
	f.m.anomaly(AnomalyDuplicateField, n, f.path(n))
}

func (f fields) str(dst *string, n *sgml.Node) {
	if *dst != "" {
		f.duplicate(n)
		return
	}
	*dst = n.Value
}

func (f fields) list(dst *[]string, n *sgml.Node) {
	*dst = append(*dst, n.Value)
}

func (f fields) integer(dst **int, n *sgml.Node) {
	if *dst != nil {
		f.duplicate(n)
		return
	}
	v, err := strconv.Atoi(strings.TrimSpace(n.Value))
	if err != nil {
		f.bad(AnomalyBadValue, n, "expected integer")
		return
	}
	*dst = &v
}

func (f fields) flag(dst **bool, n *sgml.Node) {
	if *dst != nil {
		f.duplicate(n)
		return
	}
	v, err := datetime.ParseFlag(n.Value)
	if err != nil {
		f.bad(AnomalyBadValue, n, err.Error())
		return
	}
	*dst = &v
}

// presence sets a flag whose tag usually stands alone; an explicit Y or N
// value is honored.
func (f fields) presence(dst *bool, n *sgml.Node) {
	if strings.TrimSpace(n.Value) == "" {
		*dst = true
		return
	}
	v, err := datetime.ParseFlag(n.Value)
	if err != nil {
		f.bad(AnomalyBadValue, n, err.Error())
		return
	}
	*dst = v
}

func (f fields) date(dst **datetime.Date, n *sgml.Node) {
	f.dateField(dst, n, false)
}

// requiredDate fails the whole parse when the value is unreadable.
func (f fields) requiredDate(dst **datetime.Date, n *sgml.Node) {
	f.dateField(dst, n, true)
}

func (f fields) dateField(dst **datetime.Date, n *sgml.Node, required bool) {
	if *dst != nil {
		f.duplicate(n)
		return
	}
	d, err := datetime.ParseDate(n.Value)
	if err != nil {
		f.badDate(n, err, required)
		return
	}
	*dst = &d
}

func (f fields) dateTime(dst **time.Time, n *sgml.Node) {
	if *dst != nil {
		f.duplicate(n)
		return
	}
	t, err := datetime.ParseDateTime(n.Value)
	if err != nil {
		f.badDate(n, err, false)
		return
	}
	*dst = &t
}

func (f fields) monthDay(dst **datetime.MonthDay, n *sgml.Node) {
	if *dst != nil {
		f.duplicate(n)
		return
	}
	md, err := datetime.ParseMonthDay(n.Value)
	if err != nil {
		f.badDate(n, err, false)
		return
	}
	*dst = &md
}

func (f fields) badDate(n *sgml.Node, err error, required bool) {
	var pe *datetime.DateParseError
	if errors.As(err, &pe) {
		pe.Field = f.path(n)
	}
	if required || f.m.opts.StrictDates {
		f.m.fail(err)
		return
	}
	f.bad(AnomalyBadDate, n, err.Error())
}

func (f fields) bad(kind sgml.AnomalyKind, n *sgml.Node, detail string) {
	f.keep(n)
	f.m.anomaly(kind, n, f.path(n)+": "+detail)
}
