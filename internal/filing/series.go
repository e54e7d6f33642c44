package filing

import (
	"github.com/dgallion1/ncparse/internal/sgml"
)

func (m *mapper) seriesAndClasses(n *sgml.Node) *SeriesAndClasses {
	s := &SeriesAndClasses{}
	f := m.fieldsFor(&s.Overflow, &s.Sections)
	for _, c := range n.Children {
		sub := f.within(c.Tag)
		switch c.Tag {
		case "EXISTING-SERIES-AND-CLASSES-CONTRACTS":
			for _, e := range c.Children {
				if e.Tag == "SERIES" {
					s.Existing = append(s.Existing, sub.within(e.Tag).series(e))
					continue
				}
				sub.unknown(e)
			}
		case "MERGER-SERIES-AND-CLASSES-CONTRACTS":
			for _, e := range c.Children {
				if e.Tag == "MERGER" {
					s.Mergers = append(s.Mergers, sub.within(e.Tag).merger(e))
					continue
				}
				sub.unknown(e)
			}
		case "NEW-SERIES-AND-CLASSES-CONTRACTS":
			if s.New != nil {
				f.duplicate(c)
				continue
			}
			s.New = sub.newSeries(c)
		default:
			f.unknown(c)
		}
	}
	return s
}

func (f fields) series(n *sgml.Node) Series {
	var s Series
	for _, c := range n.Children {
		switch c.Tag {
		case "OWNER-CIK":
			f.str(&s.OwnerCIK, c)
		case "SERIES-ID":
			f.str(&s.SeriesID, c)
		case "SERIES-NAME":
			f.str(&s.SeriesName, c)
		case "CLASS-CONTRACT":
			s.ClassContracts = append(s.ClassContracts, f.within(c.Tag).classContract(c))
		default:
			f.unknown(c)
		}
	}
	return s
}

func (f fields) classContract(n *sgml.Node) ClassContract {
	var cc ClassContract
	for _, c := range n.Children {
		switch c.Tag {
		case "CLASS-CONTRACT-ID":
			f.str(&cc.ID, c)
		case "CLASS-CONTRACT-NAME":
			f.str(&cc.Name, c)
		case "CLASS-CONTRACT-TICKER-SYMBOL":
			f.str(&cc.TickerSymbol, c)
		default:
			f.unknown(c)
		}
	}
	return cc
}

func (f fields) merger(n *sgml.Node) Merger {
	var mg Merger
	for _, c := range n.Children {
		switch c.Tag {
		case "ACQUIRING-DATA":
			if mg.Acquiring != nil {
				f.duplicate(c)
				continue
			}
			p := f.within(c.Tag).party(c)
			mg.Acquiring = &p
		case "TARGET-DATA":
			mg.Targets = append(mg.Targets, f.within(c.Tag).party(c))
		default:
			f.unknown(c)
		}
	}
	return mg
}

func (f fields) party(n *sgml.Node) MergerParty {
	var p MergerParty
	for _, c := range n.Children {
		switch c.Tag {
		case "CIK":
			f.str(&p.CIK, c)
		case "SERIES":
			p.Series = append(p.Series, f.within(c.Tag).series(c))
		default:
			f.unknown(c)
		}
	}
	return p
}

func (f fields) newSeries(n *sgml.Node) *NewSeries {
	ns := &NewSeries{}
	for _, c := range n.Children {
		switch c.Tag {
		case "OWNER-CIK":
			f.str(&ns.OwnerCIK, c)
		case "NEW-SERIES":
			ns.Series = append(ns.Series, f.within(c.Tag).series(c))
		case "NEW-CLASSES-CONTRACTS":
			ns.NewClasses = append(ns.NewClasses, f.within(c.Tag).series(c))
		default:
			f.unknown(c)
		}
	}
	return ns
}
